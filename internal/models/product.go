package models

import (
	"errors"
	"fmt"
	"strings"
)

type Marketplace string

const (
	MarketplaceShopify Marketplace = "shopify"
	MarketplaceAmazon  Marketplace = "amazon"
	MarketplaceMeesho  Marketplace = "meesho"
)

// Shopify rejects descriptionHtml beyond this; the other marketplaces
// are stubs and share the same ceiling for now.
const MaxDescriptionLength = 65535

var ErrUnsupportedMarketplace = errors.New("unsupported marketplace")

func ParseMarketplace(s string) (Marketplace, error) {
	switch Marketplace(strings.ToLower(strings.TrimSpace(s))) {
	case MarketplaceShopify:
		return MarketplaceShopify, nil
	case MarketplaceAmazon:
		return MarketplaceAmazon, nil
	case MarketplaceMeesho:
		return MarketplaceMeesho, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMarketplace, s)
	}
}

// ProductRequest is the normalized input for one publication. It is
// never persisted; the marketplace is the system of record.
type ProductRequest struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Marketplace    Marketplace `json:"marketplace"`
	Price          *float64    `json:"price,omitempty"`
	CompareAtPrice *float64    `json:"compareAtPrice,omitempty"`
	Inventory      *int        `json:"inventory,omitempty"`
	Tags           string      `json:"tags,omitempty"`     // comma separated
	Features       string      `json:"features,omitempty"` // newline separated
}

func (r *ProductRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if len(r.Description) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	}
	if _, err := ParseMarketplace(string(r.Marketplace)); err != nil {
		return err
	}
	if r.Price != nil && *r.Price <= 0 {
		return errors.New("price must be positive")
	}
	if r.CompareAtPrice != nil && *r.CompareAtPrice <= 0 {
		return errors.New("compareAtPrice must be positive")
	}
	if r.Inventory != nil && *r.Inventory < 0 {
		return errors.New("inventory must not be negative")
	}
	return nil
}

// ApplyPriceDefaults fills compareAtPrice with 2x price when only the
// price was given. Manual entry paths only; the AI bulk driver does
// not call this.
func (r *ProductRequest) ApplyPriceDefaults() {
	if r.Price != nil && r.CompareAtPrice == nil {
		compareAt := *r.Price * 2
		r.CompareAtPrice = &compareAt
	}
}

// TagList splits the comma separated tags field into trimmed,
// non-empty values.
func (r *ProductRequest) TagList() []string {
	return splitAndTrim(r.Tags, ",")
}

// FeatureList splits the newline separated features field into
// trimmed, non-empty lines.
func (r *ProductRequest) FeatureList() []string {
	return splitAndTrim(r.Features, "\n")
}

func splitAndTrim(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ImageFile is an in-memory image carried by a single request and
// discarded once its publication finishes.
type ImageFile struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}
