// Package marketplace routes publication requests to per-marketplace
// implementations.
package marketplace

import (
	"fmt"

	"marketpush/internal/logger"
	"marketpush/internal/models"
)

// Creator publishes one product to a marketplace. Placeholder
// marketplaces return a coming_soon result without any remote call.
type Creator interface {
	Create(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error)
}

type Dispatcher struct {
	shopify Creator
	amazon  Creator
	meesho  Creator
	logger  *logger.Logger
}

func NewDispatcher(shopify, amazon, meesho Creator, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{
		shopify: shopify,
		amazon:  amazon,
		meesho:  meesho,
		logger:  logger,
	}
}

// Publish routes on the request's marketplace. Validation upstream
// should have rejected unknown values already.
func (d *Dispatcher) Publish(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error) {
	switch req.Marketplace {
	case models.MarketplaceShopify:
		return d.shopify.Create(req, imgs)
	case models.MarketplaceAmazon:
		return d.amazon.Create(req, imgs)
	case models.MarketplaceMeesho:
		return d.meesho.Create(req, imgs)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedMarketplace, req.Marketplace)
	}
}
