// Package ai wraps the Gemini multimodal API for product image
// analysis. A missing API key disables the feature; it never crashes
// startup.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"marketpush/internal/config"
	"marketpush/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	visionModel    = "gemini-2.5-flash"
	placeholderKey = "your_gemini_api_key_here"
)

var (
	ErrNotConfigured     = errors.New("AI Vision not configured: add GEMINI_API_KEY to .env")
	ErrMalformedResponse = errors.New("AI response is not valid JSON")
	ErrEmptyResponse     = errors.New("AI returned no content")
)

var jsonPattern = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

type ProductAnalysis struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	Category      string   `json:"category"`
	SuggestedTags []string `json:"suggestedTags"`
	Confidence    float64  `json:"confidence"`
}

type Vision struct {
	apiKey string
	logger *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *Vision {
	v := &Vision{
		apiKey: cfg.GeminiAPIKey,
		logger: log,
	}
	if !v.IsConfigured() {
		log.Warn("Gemini API key not configured, AI Vision features are disabled")
	}
	return v
}

func (v *Vision) IsConfigured() bool {
	return v.apiKey != "" && v.apiKey != placeholderKey
}

// Analyze sends one product image through Gemini and parses the
// strict-JSON analysis it is prompted to return.
func (v *Vision) Analyze(ctx context.Context, imageData []byte, mimeType string) (*ProductAnalysis, error) {
	prompt := `You are an expert e-commerce product analyst. Analyze this product image and provide detailed information in JSON format.

IMPORTANT: Return ONLY valid JSON, no markdown formatting, no code blocks, no extra text.

Required JSON structure:
{
  "title": "SEO-friendly product title (max 60 characters, catchy and descriptive)",
  "description": "Detailed product description (2-3 paragraphs, 150-200 words, persuasive and highlight benefits)",
  "features": ["feature 1", "feature 2", "feature 3", "feature 4", "feature 5"],
  "category": "main product category",
  "suggestedTags": ["tag1", "tag2", "tag3", "tag4", "tag5"],
  "confidence": 0.95
}

Guidelines:
1. Title should be catchy, include key product attributes (color, material, type)
2. Description should be persuasive, professional, and SEO-optimized
3. List 5-8 key features that are visible or implied from the image
4. Suggest 5-10 relevant searchable tags
5. Confidence score (0-1) based on image clarity and recognizability
6. Make it compelling for online shoppers

Return ONLY the JSON object, nothing else.`

	text, err := v.generate(ctx, genai.Text(prompt), imagePart(imageData, mimeType))
	if err != nil {
		return nil, err
	}

	var analysis ProductAnalysis
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	v.logger.Info("AI analysis complete: %q (confidence %.0f%%)", analysis.Title, analysis.Confidence*100)
	return &analysis, nil
}

// GenerateAlternativeTitles asks for five alternative SEO titles for
// an already-analyzed product.
func (v *Vision) GenerateAlternativeTitles(ctx context.Context, currentTitle string, imageData []byte, mimeType string) ([]string, error) {
	prompt := fmt.Sprintf(`Current product title: "%s"

Based on this product image, generate 5 alternative SEO-friendly product titles. Each should:
- Be unique and catchy
- Include key product attributes
- Be 40-60 characters
- Be optimized for search engines

Return as JSON array: ["title1", "title2", "title3", "title4", "title5"]
Return ONLY the JSON array, no markdown, no extra text.`, currentTitle)

	text, err := v.generate(ctx, genai.Text(prompt), imagePart(imageData, mimeType))
	if err != nil {
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &titles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return titles, nil
}

// EnhanceDescription rewrites a description against the image. The
// model returns plain text here, so only whitespace is trimmed.
func (v *Vision) EnhanceDescription(ctx context.Context, currentDescription string, imageData []byte, mimeType string) (string, error) {
	prompt := fmt.Sprintf(`Current product description: "%s"

Based on the product image, enhance this description to:
- Make it more persuasive and engaging
- Add sensory details visible in the image
- Highlight unique selling points
- Optimize for SEO
- Keep it 150-250 words
- Make it professional and compelling

Return only the enhanced description text, no extra formatting.`, currentDescription)

	text, err := v.generate(ctx, genai.Text(prompt), imagePart(imageData, mimeType))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// TestConnection makes a trivial generation call to probe
// reachability.
func (v *Vision) TestConnection(ctx context.Context) (bool, string) {
	if !v.IsConfigured() {
		return false, "AI Vision not configured. Add GEMINI_API_KEY to .env"
	}

	text, err := v.generate(ctx, genai.Text(`Say "AI Vision is working!"`))
	if err != nil {
		return false, fmt.Sprintf("AI Vision test failed: %v", err)
	}
	if !strings.Contains(text, "working") {
		return false, "AI Vision connection issue"
	}
	return true, "AI Vision is working!"
}

func (v *Vision) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if !v.IsConfigured() {
		return "", ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(v.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(visionModel)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}
	return "", ErrEmptyResponse
}

func imagePart(data []byte, mimeType string) genai.Part {
	// genai wants the bare subtype ("jpeg"), not "image/jpeg".
	return genai.ImageData(strings.TrimPrefix(mimeType, "image/"), data)
}

// cleanJSONResponse strips markdown fences and surrounding prose so a
// noisy model reply still parses. Running it on clean JSON is a no-op.
func cleanJSONResponse(response string) string {
	cleaned := strings.ReplaceAll(response, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if match := jsonPattern.FindString(cleaned); match != "" {
		cleaned = match
	}

	return cleaned
}
