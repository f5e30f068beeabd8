package bulk

import (
	"context"
	"strings"

	"marketpush/internal/ai"
	"marketpush/internal/csvutil"
	"marketpush/internal/images"
	"marketpush/internal/logger"
	"marketpush/internal/models"
)

// Analyzer is satisfied by ai.Vision.
type Analyzer interface {
	Analyze(ctx context.Context, imageData []byte, mimeType string) (*ai.ProductAnalysis, error)
}

type AIUploadResult struct {
	Success      bool                  `json:"success"`
	ProductID    string                `json:"productId"`
	ProductTitle string                `json:"productTitle"`
	Error        string                `json:"error,omitempty"`
	Data         *models.PublishResult `json:"data,omitempty"`
	AIAnalysis   *ai.ProductAnalysis   `json:"aiAnalysis,omitempty"`
}

type AIReport struct {
	TotalProcessed int              `json:"totalProcessed"`
	SuccessCount   int              `json:"successCount"`
	FailedCount    int              `json:"failedCount"`
	Results        []AIUploadResult `json:"results"`
}

type AIService struct {
	publisher Publisher
	analyzer  Analyzer
	logger    *logger.Logger
}

func NewAI(publisher Publisher, analyzer Analyzer, logger *logger.Logger) *AIService {
	return &AIService{
		publisher: publisher,
		analyzer:  analyzer,
		logger:    logger,
	}
}

// Process derives title, description, tags and features from the
// first image of each row's folder, then publishes. Caller-supplied
// defaults override AI suggestions for tags and features; price
// fields come from defaults only (no 2x compare-at defaulting here).
func (s *AIService) Process(ctx context.Context, csvText string, marketplace models.Marketplace, defaults Defaults) (*AIReport, error) {
	rows, err := csvutil.Parse(csvText)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Parsed %d products from CSV for AI processing", len(rows))

	report := &AIReport{Results: make([]AIUploadResult, 0, len(rows))}
	for _, row := range rows {
		result := s.processRow(ctx, row, marketplace, defaults)
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

func (s *AIService) processRow(ctx context.Context, row csvutil.Row, marketplace models.Marketplace, defaults Defaults) AIUploadResult {
	id := row["id"]
	folderPath := row["folderpath"]

	if id == "" || folderPath == "" {
		return AIUploadResult{
			ProductID:    orUnknown(id),
			ProductTitle: "Unknown",
			Error:        "Missing required fields (id or folderPath)",
		}
	}

	s.logger.Info("Processing product ID: %s with AI", id)

	imgs, err := images.LoadFromFolder(folderPath)
	if err != nil {
		return AIUploadResult{ProductID: id, ProductTitle: "Unknown", Error: err.Error()}
	}

	analysis, err := s.analyzer.Analyze(ctx, imgs[0].Data, imgs[0].MimeType)
	if err != nil {
		return AIUploadResult{ProductID: id, ProductTitle: "Unknown", Error: err.Error()}
	}
	s.logger.Info("AI analysis complete for %s: %s", id, analysis.Title)

	req := &models.ProductRequest{
		Title:          analysis.Title,
		Description:    analysis.Description,
		Marketplace:    marketplace,
		Price:          defaults.Price,
		CompareAtPrice: defaults.CompareAtPrice,
		Inventory:      defaults.Inventory,
		Tags:           firstNonEmpty(defaults.Tags, strings.Join(analysis.SuggestedTags, ",")),
		Features:       firstNonEmpty(defaults.Features, strings.Join(analysis.Features, "\n")),
	}

	if err := req.Validate(); err != nil {
		return AIUploadResult{ProductID: id, ProductTitle: analysis.Title, Error: err.Error()}
	}

	result, err := s.publisher.Publish(req, imgs)
	if err != nil {
		s.logger.Error("Failed to create product %s: %v", id, err)
		return AIUploadResult{ProductID: id, ProductTitle: analysis.Title, Error: err.Error()}
	}

	s.logger.Info("Successfully created product %s: %s", id, analysis.Title)
	return AIUploadResult{
		Success:      true,
		ProductID:    id,
		ProductTitle: analysis.Title,
		Data:         result,
		AIAnalysis:   analysis,
	}
}
