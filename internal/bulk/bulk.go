// Package bulk drives CSV-based batch operations: manual bulk
// uploads, AI-assisted bulk uploads, and SEO meta updates. Every
// driver isolates failures per row; only an unparseable CSV aborts a
// whole batch.
package bulk

import (
	"fmt"
	"strconv"

	"marketpush/internal/csvutil"
	"marketpush/internal/images"
	"marketpush/internal/logger"
	"marketpush/internal/models"
)

// Publisher is satisfied by marketplace.Dispatcher.
type Publisher interface {
	Publish(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error)
}

// Defaults fill row fields the CSV leaves out.
type Defaults struct {
	Price          *float64
	CompareAtPrice *float64
	Inventory      *int
	Tags           string
	Features       string
}

type UploadResult struct {
	Success      bool                  `json:"success"`
	ProductTitle string                `json:"productTitle"`
	Error        string                `json:"error,omitempty"`
	Data         *models.PublishResult `json:"data,omitempty"`
}

type Report struct {
	TotalProcessed int            `json:"totalProcessed"`
	SuccessCount   int            `json:"successCount"`
	FailedCount    int            `json:"failedCount"`
	Results        []UploadResult `json:"results"`
}

type Service struct {
	publisher Publisher
	logger    *logger.Logger
}

func New(publisher Publisher, logger *logger.Logger) *Service {
	return &Service{
		publisher: publisher,
		logger:    logger,
	}
}

// Process publishes one product per CSV row. Rows need title,
// description and folderPath; defaults fill the rest.
func (s *Service) Process(csvText string, marketplace models.Marketplace, defaults Defaults) (*Report, error) {
	rows, err := csvutil.Parse(csvText)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Parsed %d products from CSV", len(rows))

	report := &Report{Results: make([]UploadResult, 0, len(rows))}
	for _, row := range rows {
		result := s.processRow(row, marketplace, defaults)
		report.Results = append(report.Results, result)
		report.TotalProcessed++
		if result.Success {
			report.SuccessCount++
		} else {
			report.FailedCount++
		}
	}

	return report, nil
}

func (s *Service) processRow(row csvutil.Row, marketplace models.Marketplace, defaults Defaults) UploadResult {
	title := row["title"]
	description := row["description"]
	folderPath := row["folderpath"]

	if title == "" || description == "" || folderPath == "" {
		return UploadResult{
			ProductTitle: orUnknown(title),
			Error:        "Missing required fields (title, description, or folderPath)",
		}
	}

	s.logger.Info("Processing product: %s", title)

	imgs, err := images.LoadFromFolder(folderPath)
	if err != nil {
		return UploadResult{ProductTitle: title, Error: err.Error()}
	}

	req := &models.ProductRequest{
		Title:       title,
		Description: description,
		Marketplace: marketplace,
		Tags:        firstNonEmpty(row["tags"], defaults.Tags),
		Features:    firstNonEmpty(row["features"], defaults.Features),
	}

	req.Price = defaults.Price
	if row["price"] != "" {
		price, err := strconv.ParseFloat(row["price"], 64)
		if err != nil {
			return UploadResult{ProductTitle: title, Error: fmt.Sprintf("invalid price %q", row["price"])}
		}
		req.Price = &price
	}

	req.CompareAtPrice = defaults.CompareAtPrice
	if row["compareatprice"] != "" {
		compareAt, err := strconv.ParseFloat(row["compareatprice"], 64)
		if err != nil {
			return UploadResult{ProductTitle: title, Error: fmt.Sprintf("invalid compareAtPrice %q", row["compareatprice"])}
		}
		req.CompareAtPrice = &compareAt
	}

	req.Inventory = defaults.Inventory
	if row["inventory"] != "" {
		inventory, err := strconv.Atoi(row["inventory"])
		if err != nil {
			return UploadResult{ProductTitle: title, Error: fmt.Sprintf("invalid inventory %q", row["inventory"])}
		}
		req.Inventory = &inventory
	}

	req.ApplyPriceDefaults()

	if err := req.Validate(); err != nil {
		return UploadResult{ProductTitle: title, Error: err.Error()}
	}

	result, err := s.publisher.Publish(req, imgs)
	if err != nil {
		s.logger.Error("Failed to create product %s: %v", title, err)
		return UploadResult{ProductTitle: title, Error: err.Error()}
	}

	s.logger.Info("Successfully created product: %s", title)
	return UploadResult{Success: true, ProductTitle: title, Data: result}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
