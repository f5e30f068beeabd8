package bulk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"marketpush/internal/ai"
	"marketpush/internal/logger"
	"marketpush/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeAnalyzer struct {
	calls    int
	analysis *ai.ProductAnalysis
	err      error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, imageData []byte, mimeType string) (*ai.ProductAnalysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

func defaultAnalysis() *ai.ProductAnalysis {
	return &ai.ProductAnalysis{
		Title:         "AI Mug",
		Description:   "An AI-described mug",
		Features:      []string{"Ceramic", "350ml"},
		Category:      "Kitchen",
		SuggestedTags: []string{"mug", "coffee"},
		Confidence:    0.92,
	}
}

func TestAIProcessUsesAnalysis(t *testing.T) {
	folder := imageFolder(t)
	publisher := &fakePublisher{}
	analyzer := &fakeAnalyzer{analysis: defaultAnalysis()}
	svc := NewAI(publisher, analyzer, logger.New("error"))

	report, err := svc.Process(
		context.Background(),
		fmt.Sprintf("id,folderPath\nsku-1,%s\n", folder),
		models.MarketplaceShopify,
		Defaults{},
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, analyzer.calls)

	req := publisher.requests[0]
	assert.Equal(t, "AI Mug", req.Title)
	assert.Equal(t, "mug,coffee", req.Tags)
	assert.Equal(t, []string{"Ceramic", "350ml"}, req.FeatureList())
	assert.Nil(t, req.CompareAtPrice)

	assert.Equal(t, "sku-1", report.Results[0].ProductID)
	assert.Equal(t, "AI Mug", report.Results[0].ProductTitle)
	assert.NotNil(t, report.Results[0].AIAnalysis)
}

func TestAIProcessDefaultsOverrideSuggestions(t *testing.T) {
	folder := imageFolder(t)
	publisher := &fakePublisher{}
	svc := NewAI(publisher, &fakeAnalyzer{analysis: defaultAnalysis()}, logger.New("error"))

	_, err := svc.Process(
		context.Background(),
		fmt.Sprintf("id,folderPath\nsku-1,%s\n", folder),
		models.MarketplaceShopify,
		Defaults{Tags: "sale,featured", Features: "Hand wash only"},
	)
	assert.NoError(t, err)

	req := publisher.requests[0]
	assert.Equal(t, "sale,featured", req.Tags)
	assert.Equal(t, "Hand wash only", req.Features)
}

func TestAIProcessMissingFieldsFailsRow(t *testing.T) {
	svc := NewAI(&fakePublisher{}, &fakeAnalyzer{analysis: defaultAnalysis()}, logger.New("error"))

	report, err := svc.Process(
		context.Background(),
		"id,folderPath\nsku-1,\n",
		models.MarketplaceShopify,
		Defaults{},
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.FailedCount)
	assert.Contains(t, report.Results[0].Error, "Missing required fields")
}

func TestAIProcessAnalyzerFailureFailsRowOnly(t *testing.T) {
	folder := imageFolder(t)
	second := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(second, "b.png"), []byte("png"), 0o644))

	publisher := &fakePublisher{}
	analyzer := &fakeAnalyzer{err: fmt.Errorf("model overloaded")}
	svc := NewAI(publisher, analyzer, logger.New("error"))

	report, err := svc.Process(
		context.Background(),
		fmt.Sprintf("id,folderPath\nsku-1,%s\nsku-2,%s\n", folder, second),
		models.MarketplaceShopify,
		Defaults{},
	)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.TotalProcessed)
	assert.Equal(t, 2, report.FailedCount)
	assert.Equal(t, "model overloaded", report.Results[0].Error)
	// Both rows were attempted; the first failure did not stop row 2.
	assert.Equal(t, 2, analyzer.calls)
	assert.Empty(t, publisher.requests)
}
