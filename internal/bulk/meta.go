package bulk

import (
	"fmt"
	"net/url"
	"strings"

	"marketpush/internal/csvutil"
	"marketpush/internal/logger"
	"marketpush/internal/models"
)

const (
	resourceProduct    = "product"
	resourceCollection = "collection"
)

// MetaUpdater is satisfied by shopify.Client.
type MetaUpdater interface {
	UpdateProductMeta(handle, metaTitle, metaDescription string) (*models.SEOResource, error)
	UpdateCollectionMeta(handle, metaTitle, metaDescription string) (*models.SEOResource, error)
}

type MetaResult struct {
	Success    bool                `json:"success"`
	URL        string              `json:"url"`
	Type       string              `json:"type"`
	Identifier string              `json:"identifier"`
	Error      string              `json:"error,omitempty"`
	Data       *models.SEOResource `json:"data,omitempty"`
}

type MetaReport struct {
	TotalProcessed int          `json:"totalProcessed"`
	SuccessCount   int          `json:"successCount"`
	FailedCount    int          `json:"failedCount"`
	Results        []MetaResult `json:"results"`
}

type MetaService struct {
	updater MetaUpdater
	logger  *logger.Logger
}

func NewMeta(updater MetaUpdater, logger *logger.Logger) *MetaService {
	return &MetaService{
		updater: updater,
		logger:  logger,
	}
}

// Process updates SEO title/description per CSV row. Page URLs are
// inspected for /collections/ or /products/ to find the resource type
// and handle. Rows with an empty URL are skipped silently.
func (s *MetaService) Process(csvText string, marketplace models.Marketplace) (*MetaReport, error) {
	rows, err := csvutil.Parse(csvText)
	if err != nil {
		return nil, err
	}

	report := &MetaReport{}
	for _, row := range rows {
		if strings.TrimSpace(row["pageurl"]) == "" {
			continue
		}
		result := s.processRow(row, marketplace)
		report.Results = append(report.Results, result)
		report.TotalProcessed++
		if result.Success {
			report.SuccessCount++
		} else {
			report.FailedCount++
		}
	}
	s.logger.Info("Processed %d meta updates from CSV", report.TotalProcessed)

	return report, nil
}

func (s *MetaService) processRow(row csvutil.Row, marketplace models.Marketplace) MetaResult {
	pageURL := row["pageurl"]
	metaTitle := row["metatitle"]
	metaDescription := row["metadescription"]

	if metaTitle == "" || metaDescription == "" {
		return MetaResult{
			URL:        pageURL,
			Type:       resourceProduct,
			Identifier: "Unknown",
			Error:      "Missing required fields (pageUrl, metaTitle, or metaDescription)",
		}
	}

	resourceType, handle, err := parsePageURL(pageURL)
	if err != nil {
		return MetaResult{
			URL:        pageURL,
			Type:       resourceProduct,
			Identifier: "Unknown",
			Error:      err.Error(),
		}
	}

	s.logger.Info("Updating %s %q with meta title %q", resourceType, handle, metaTitle)

	if marketplace != models.MarketplaceShopify {
		return MetaResult{
			URL:        pageURL,
			Type:       resourceType,
			Identifier: handle,
			Error:      fmt.Sprintf("Marketplace %s is not yet supported for meta updates", marketplace),
		}
	}

	var data *models.SEOResource
	if resourceType == resourceCollection {
		data, err = s.updater.UpdateCollectionMeta(handle, metaTitle, metaDescription)
	} else {
		data, err = s.updater.UpdateProductMeta(handle, metaTitle, metaDescription)
	}
	if err != nil {
		s.logger.Error("Failed to update %s: %v", pageURL, err)
		return MetaResult{URL: pageURL, Type: resourceType, Identifier: handle, Error: err.Error()}
	}

	return MetaResult{
		Success:    true,
		URL:        pageURL,
		Type:       resourceType,
		Identifier: handle,
		Data:       data,
	}
}

// parsePageURL extracts the resource type and handle from a
// storefront URL.
func parsePageURL(pageURL string) (string, string, error) {
	invalid := fmt.Errorf("Invalid URL format. URL must contain /collections/ or /products/")

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", "", invalid
	}

	// Collections are checked first; /collections/x/products/y counts
	// as collection x.
	path := parsed.Path
	if handle := handleAfter(path, "/collections/"); handle != "" {
		return resourceCollection, handle, nil
	}
	if handle := handleAfter(path, "/products/"); handle != "" {
		return resourceProduct, handle, nil
	}

	return "", "", invalid
}

func handleAfter(path, prefix string) string {
	idx := strings.Index(path, prefix)
	if idx < 0 {
		return ""
	}
	rest := path[idx+len(prefix):]
	return strings.SplitN(rest, "/", 2)[0]
}
