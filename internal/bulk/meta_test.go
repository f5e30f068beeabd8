package bulk

import (
	"fmt"
	"testing"

	"marketpush/internal/logger"
	"marketpush/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeUpdater struct {
	productCalls    []string
	collectionCalls []string
	err             error
}

func (f *fakeUpdater) UpdateProductMeta(handle, metaTitle, metaDescription string) (*models.SEOResource, error) {
	f.productCalls = append(f.productCalls, handle)
	if f.err != nil {
		return nil, f.err
	}
	return &models.SEOResource{ID: "gid://shopify/Product/1", Handle: handle, SEO: models.SEO{Title: metaTitle, Description: metaDescription}}, nil
}

func (f *fakeUpdater) UpdateCollectionMeta(handle, metaTitle, metaDescription string) (*models.SEOResource, error) {
	f.collectionCalls = append(f.collectionCalls, handle)
	if f.err != nil {
		return nil, f.err
	}
	return &models.SEOResource{ID: "gid://shopify/Collection/2", Handle: handle, SEO: models.SEO{Title: metaTitle}}, nil
}

func TestMetaProcessRoutesByURL(t *testing.T) {
	updater := &fakeUpdater{}
	svc := NewMeta(updater, logger.New("error"))

	csvText := "pageUrl,metaTitle,metaDescription\n" +
		"https://shop.example.com/products/blue-mug,Blue Mug,Best blue mug\n" +
		"https://shop.example.com/collections/summer,Summer,Summer collection\n"

	report, err := svc.Process(csvText, models.MarketplaceShopify)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.TotalProcessed)
	assert.Equal(t, 2, report.SuccessCount)

	assert.Equal(t, []string{"blue-mug"}, updater.productCalls)
	assert.Equal(t, []string{"summer"}, updater.collectionCalls)
	assert.Equal(t, "product", report.Results[0].Type)
	assert.Equal(t, "collection", report.Results[1].Type)
}

func TestMetaProcessInvalidURLFailsRow(t *testing.T) {
	svc := NewMeta(&fakeUpdater{}, logger.New("error"))

	report, err := svc.Process(
		"pageUrl,metaTitle,metaDescription\nhttps://shop.example.com/pages/about,About,About us\n",
		models.MarketplaceShopify,
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.FailedCount)
	assert.Contains(t, report.Results[0].Error, "Invalid URL format")
}

func TestMetaProcessSkipsEmptyURLRows(t *testing.T) {
	updater := &fakeUpdater{}
	svc := NewMeta(updater, logger.New("error"))

	csvText := "pageUrl,metaTitle,metaDescription\n" +
		",Skipped,Skipped row\n" +
		"https://shop.example.com/products/mug,Mug,A mug\n"

	report, err := svc.Process(csvText, models.MarketplaceShopify)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.TotalProcessed)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, []string{"mug"}, updater.productCalls)
}

func TestMetaProcessMissingFieldsFailsRow(t *testing.T) {
	svc := NewMeta(&fakeUpdater{}, logger.New("error"))

	report, err := svc.Process(
		"pageUrl,metaTitle,metaDescription\nhttps://shop.example.com/products/mug,,\n",
		models.MarketplaceShopify,
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.FailedCount)
	assert.Contains(t, report.Results[0].Error, "Missing required fields")
}

func TestMetaProcessUpdaterErrorFailsRowOnly(t *testing.T) {
	updater := &fakeUpdater{err: fmt.Errorf("product not found with handle: mug")}
	svc := NewMeta(updater, logger.New("error"))

	csvText := "pageUrl,metaTitle,metaDescription\n" +
		"https://shop.example.com/products/mug,Mug,A mug\n" +
		"https://shop.example.com/products/cup,Cup,A cup\n"

	report, err := svc.Process(csvText, models.MarketplaceShopify)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.FailedCount)
	assert.Len(t, updater.productCalls, 2)
}

func TestMetaProcessUnsupportedMarketplace(t *testing.T) {
	svc := NewMeta(&fakeUpdater{}, logger.New("error"))

	report, err := svc.Process(
		"pageUrl,metaTitle,metaDescription\nhttps://shop.example.com/products/mug,Mug,A mug\n",
		models.MarketplaceAmazon,
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.FailedCount)
	assert.Contains(t, report.Results[0].Error, "not yet supported for meta updates")
}

func TestParsePageURL(t *testing.T) {
	typ, handle, err := parsePageURL("https://shop.example.com/collections/summer/products/mug")
	assert.NoError(t, err)
	assert.Equal(t, "collection", typ)
	assert.Equal(t, "summer", handle)

	typ, handle, err = parsePageURL("https://shop.example.com/products/mug?variant=1")
	assert.NoError(t, err)
	assert.Equal(t, "product", typ)
	assert.Equal(t, "mug", handle)

	_, _, err = parsePageURL("https://shop.example.com/")
	assert.Error(t, err)
}
