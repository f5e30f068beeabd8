package marketplace

import (
	"testing"

	"marketpush/internal/logger"
	"marketpush/internal/marketplace/amazon"
	"marketpush/internal/marketplace/meesho"
	"marketpush/internal/models"

	"github.com/stretchr/testify/assert"
)

type recordingCreator struct {
	calls int
	out   *models.PublishResult
}

func (r *recordingCreator) Create(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error) {
	r.calls++
	return r.out, nil
}

func newTestDispatcher(shopify Creator) *Dispatcher {
	log := logger.New("error")
	return NewDispatcher(shopify, amazon.New(log), meesho.New(log), log)
}

func TestPublishRoutesToShopify(t *testing.T) {
	shopify := &recordingCreator{out: &models.PublishResult{Product: &models.RemoteProduct{ID: "1"}}}
	d := newTestDispatcher(shopify)

	result, err := d.Publish(&models.ProductRequest{Marketplace: models.MarketplaceShopify}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, shopify.calls)
	assert.Equal(t, "1", result.Product.ID)
}

func TestPublishAmazonReturnsComingSoon(t *testing.T) {
	shopify := &recordingCreator{}
	d := newTestDispatcher(shopify)

	req := &models.ProductRequest{
		Title:       "Mug",
		Description: "A mug",
		Marketplace: models.MarketplaceAmazon,
	}
	result, err := d.Publish(req, []models.ImageFile{{Filename: "a.png"}})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusComingSoon, result.Status)
	assert.Equal(t, "Amazon", result.Marketplace)
	assert.Nil(t, result.Product)
	assert.Equal(t, "Mug", result.Echo.Title)
	assert.Equal(t, 1, result.Echo.ImageCount)
	assert.Equal(t, 0, shopify.calls)
}

func TestPublishMeeshoReturnsComingSoon(t *testing.T) {
	d := newTestDispatcher(&recordingCreator{})

	result, err := d.Publish(&models.ProductRequest{Marketplace: models.MarketplaceMeesho}, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusComingSoon, result.Status)
	assert.Equal(t, "Meesho", result.Marketplace)
}

func TestPublishUnsupportedMarketplace(t *testing.T) {
	d := newTestDispatcher(&recordingCreator{})

	_, err := d.Publish(&models.ProductRequest{Marketplace: "etsy"}, nil)
	assert.ErrorIs(t, err, models.ErrUnsupportedMarketplace)
}
