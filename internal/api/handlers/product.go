package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"marketpush/internal/ai"
	"marketpush/internal/bulk"
	"marketpush/internal/events"
	"marketpush/internal/images"
	"marketpush/internal/logger"
	"marketpush/internal/marketplace"
	"marketpush/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxImagesPerRequest = 10

type ProductHandler struct {
	db         *gorm.DB
	logger     *logger.Logger
	vision     *ai.Vision
	dispatcher *marketplace.Dispatcher
	bulk       *bulk.Service
	bulkAI     *bulk.AIService
	meta       *bulk.MetaService
	events     *events.Producer
}

func NewProductHandler(
	db *gorm.DB,
	logger *logger.Logger,
	vision *ai.Vision,
	dispatcher *marketplace.Dispatcher,
	bulkSvc *bulk.Service,
	bulkAISvc *bulk.AIService,
	metaSvc *bulk.MetaService,
	producer *events.Producer,
) *ProductHandler {
	return &ProductHandler{
		db:         db,
		logger:     logger,
		vision:     vision,
		dispatcher: dispatcher,
		bulk:       bulkSvc,
		bulkAI:     bulkAISvc,
		meta:       metaSvc,
		events:     producer,
	}
}

// Create publishes a single product from a multipart form with up to
// ten image files.
func (h *ProductHandler) Create(c *gin.Context) {
	marketplaceName, ok := h.requireMarketplace(c)
	if !ok {
		return
	}

	req := &models.ProductRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Marketplace: marketplaceName,
		Tags:        c.PostForm("tags"),
		Features:    c.PostForm("features"),
	}

	var err error
	if req.Price, err = optionalFloat(c, "price"); err != nil {
		badRequest(c, "Invalid price", err)
		return
	}
	if req.CompareAtPrice, err = optionalFloat(c, "compareAtPrice"); err != nil {
		badRequest(c, "Invalid compareAtPrice", err)
		return
	}
	if req.Inventory, err = optionalInt(c, "inventory"); err != nil {
		badRequest(c, "Invalid inventory", err)
		return
	}

	req.ApplyPriceDefaults()
	if err := req.Validate(); err != nil {
		badRequest(c, "Validation failed", err)
		return
	}

	imgs, err := h.formImages(c)
	if err != nil {
		badRequest(c, "Invalid images", err)
		return
	}

	result, err := h.dispatcher.Publish(req, imgs)
	h.emitPublish(req, result, err)
	if err != nil {
		h.logger.Error("Failed to publish %q to %s: %v", req.Title, req.Marketplace, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create product",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
		"message": "Product created successfully",
	})
}

// AnalyzeImage runs the vision model over the first uploaded image.
func (h *ProductHandler) AnalyzeImage(c *gin.Context) {
	if !h.requireAI(c) {
		return
	}

	imgs, err := h.formImages(c)
	if err != nil {
		badRequest(c, "Invalid images", err)
		return
	}
	if len(imgs) == 0 {
		badRequest(c, "At least one image is required", nil)
		return
	}

	analysis, err := h.vision.Analyze(c.Request.Context(), imgs[0].Data, imgs[0].MimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Image analysis failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analysis,
		"message": "Image analyzed successfully",
	})
}

// CreateWithAI derives product content from the first image, applies
// any caller overrides, then publishes like Create.
func (h *ProductHandler) CreateWithAI(c *gin.Context) {
	if !h.requireAI(c) {
		return
	}
	marketplaceName, ok := h.requireMarketplace(c)
	if !ok {
		return
	}

	imgs, err := h.formImages(c)
	if err != nil {
		badRequest(c, "Invalid images", err)
		return
	}
	if len(imgs) == 0 {
		badRequest(c, "At least one image is required", nil)
		return
	}

	analysis, err := h.vision.Analyze(c.Request.Context(), imgs[0].Data, imgs[0].MimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Image analysis failed",
			"error":   err.Error(),
		})
		return
	}

	req := &models.ProductRequest{
		Title:       firstNonEmpty(c.PostForm("title"), analysis.Title),
		Description: firstNonEmpty(c.PostForm("description"), analysis.Description),
		Marketplace: marketplaceName,
		Tags:        firstNonEmpty(c.PostForm("tags"), joinComma(analysis.SuggestedTags)),
		Features:    firstNonEmpty(c.PostForm("features"), joinLines(analysis.Features)),
	}

	if req.Price, err = optionalFloat(c, "price"); err != nil {
		badRequest(c, "Invalid price", err)
		return
	}
	if req.CompareAtPrice, err = optionalFloat(c, "compareAtPrice"); err != nil {
		badRequest(c, "Invalid compareAtPrice", err)
		return
	}
	if req.Inventory, err = optionalInt(c, "inventory"); err != nil {
		badRequest(c, "Invalid inventory", err)
		return
	}

	req.ApplyPriceDefaults()
	if err := req.Validate(); err != nil {
		badRequest(c, "Validation failed", err)
		return
	}

	result, err := h.dispatcher.Publish(req, imgs)
	h.emitPublish(req, result, err)
	if err != nil {
		h.logger.Error("Failed to publish %q to %s: %v", req.Title, req.Marketplace, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create product",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result,
		"aiAnalysis": analysis,
		"message":    "Product created successfully with AI",
	})
}

// AIStatus reports whether the vision model is configured and
// reachable.
func (h *ProductHandler) AIStatus(c *gin.Context) {
	if !h.vision.IsConfigured() {
		c.JSON(http.StatusOK, gin.H{
			"configured": false,
			"success":    false,
			"message":    "AI Vision not configured. Add GEMINI_API_KEY to .env",
		})
		return
	}

	ok, message := h.vision.TestConnection(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"configured": true,
		"success":    ok,
		"message":    message,
	})
}

// BulkUpload publishes one product per CSV row.
func (h *ProductHandler) BulkUpload(c *gin.Context) {
	marketplaceName, ok := h.requireMarketplace(c)
	if !ok {
		return
	}
	csvText, err := csvFromForm(c)
	if err != nil {
		badRequest(c, "CSV file is required", err)
		return
	}
	defaults, err := bulkDefaults(c)
	if err != nil {
		badRequest(c, "Invalid bulk defaults", err)
		return
	}

	report, err := h.bulk.Process(csvText, marketplaceName, defaults)
	if err != nil {
		badRequest(c, "Failed to process CSV", err)
		return
	}
	h.emitBulkResults(marketplaceName, report.Results)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
		"message": fmt.Sprintf("Processed %d products", report.TotalProcessed),
	})
}

// BulkUploadAI publishes one AI-described product per CSV row.
func (h *ProductHandler) BulkUploadAI(c *gin.Context) {
	if !h.requireAI(c) {
		return
	}
	marketplaceName, ok := h.requireMarketplace(c)
	if !ok {
		return
	}
	csvText, err := csvFromForm(c)
	if err != nil {
		badRequest(c, "CSV file is required", err)
		return
	}
	defaults, err := bulkDefaults(c)
	if err != nil {
		badRequest(c, "Invalid bulk defaults", err)
		return
	}

	report, err := h.bulkAI.Process(c.Request.Context(), csvText, marketplaceName, defaults)
	if err != nil {
		badRequest(c, "Failed to process CSV", err)
		return
	}
	h.emitAIBulkResults(marketplaceName, report.Results)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
		"message": fmt.Sprintf("Processed %d products with AI", report.TotalProcessed),
	})
}

// MetaUpdate updates SEO fields for products and collections listed in
// a CSV of storefront URLs.
func (h *ProductHandler) MetaUpdate(c *gin.Context) {
	marketplaceName, ok := h.requireMarketplace(c)
	if !ok {
		return
	}
	csvText, err := csvFromForm(c)
	if err != nil {
		badRequest(c, "CSV file is required", err)
		return
	}

	report, err := h.meta.Process(csvText, marketplaceName)
	if err != nil {
		badRequest(c, "Failed to process CSV", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
		"message": fmt.Sprintf("Processed %d meta updates", report.TotalProcessed),
	})
}

// History lists publish records written by the worker, newest first.
func (h *ProductHandler) History(c *gin.Context) {
	var records []models.PublishRecord

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.db.Model(&models.PublishRecord{})
	if marketplaceName := c.Query("marketplace"); marketplaceName != "" {
		query = query.Where("marketplace = ?", marketplaceName)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch publish history",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) requireMarketplace(c *gin.Context) (models.Marketplace, bool) {
	raw := c.PostForm("marketplace")
	if raw == "" {
		badRequest(c, "Marketplace is required", nil)
		return "", false
	}
	marketplaceName, err := models.ParseMarketplace(raw)
	if err != nil {
		badRequest(c, "Unsupported marketplace", err)
		return "", false
	}
	return marketplaceName, true
}

func (h *ProductHandler) requireAI(c *gin.Context) bool {
	if h.vision.IsConfigured() {
		return true
	}
	badRequest(c, "AI Vision not configured. Add GEMINI_API_KEY to .env", nil)
	return false
}

func (h *ProductHandler) formImages(c *gin.Context) ([]models.ImageFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	files := form.File["images"]
	if len(files) > maxImagesPerRequest {
		return nil, fmt.Errorf("a maximum of %d images is allowed", maxImagesPerRequest)
	}

	imgs := make([]models.ImageFile, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = images.MimeTypeForExt(filepath.Ext(header.Filename))
		}

		imgs = append(imgs, models.ImageFile{
			Data:     data,
			Filename: header.Filename,
			MimeType: mimeType,
			Size:     header.Size,
		})
	}
	return imgs, nil
}

func (h *ProductHandler) emitPublish(req *models.ProductRequest, result *models.PublishResult, pubErr error) {
	event := events.Event{
		Marketplace: string(req.Marketplace),
		Title:       req.Title,
	}
	if pubErr != nil {
		event.Type = events.TypeProductPublishFailed
		event.Error = pubErr.Error()
		h.events.Emit(event)
		return
	}

	event.Type = events.TypeProductPublished
	event.ImageCount = result.TotalImages
	event.FailedImages = result.FailedMediaCount()
	if result.Product != nil {
		event.ProductID = result.Product.ID
		event.Title = result.Product.Title
	}
	h.events.Emit(event)
}

func (h *ProductHandler) emitBulkResults(marketplaceName models.Marketplace, results []bulk.UploadResult) {
	for _, r := range results {
		if !r.Success || r.Data == nil {
			continue
		}
		event := events.Event{
			Type:         events.TypeProductPublished,
			Marketplace:  string(marketplaceName),
			Title:        r.ProductTitle,
			ImageCount:   r.Data.TotalImages,
			FailedImages: r.Data.FailedMediaCount(),
		}
		if r.Data.Product != nil {
			event.ProductID = r.Data.Product.ID
		}
		h.events.Emit(event)
	}
}

func (h *ProductHandler) emitAIBulkResults(marketplaceName models.Marketplace, results []bulk.AIUploadResult) {
	for _, r := range results {
		if !r.Success || r.Data == nil {
			continue
		}
		event := events.Event{
			Type:         events.TypeProductPublished,
			Marketplace:  string(marketplaceName),
			Title:        r.ProductTitle,
			ImageCount:   r.Data.TotalImages,
			FailedImages: r.Data.FailedMediaCount(),
		}
		if r.Data.Product != nil {
			event.ProductID = r.Data.Product.ID
		}
		h.events.Emit(event)
	}
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func csvFromForm(c *gin.Context) (string, error) {
	header, err := c.FormFile("csvFile")
	if err != nil {
		return "", fmt.Errorf("missing csvFile: %w", err)
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read CSV: %w", err)
	}
	return string(data), nil
}

func bulkDefaults(c *gin.Context) (bulk.Defaults, error) {
	defaults := bulk.Defaults{
		Tags:     c.PostForm("bulkTags"),
		Features: c.PostForm("bulkFeatures"),
	}

	var err error
	if defaults.Price, err = optionalFloat(c, "bulkPrice"); err != nil {
		return defaults, err
	}
	if defaults.CompareAtPrice, err = optionalFloat(c, "bulkCompareAtPrice"); err != nil {
		return defaults, err
	}
	if defaults.Inventory, err = optionalInt(c, "bulkInventory"); err != nil {
		return defaults, err
	}
	return defaults, nil
}

func optionalFloat(c *gin.Context, field string) (*float64, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", field, raw)
	}
	return &value, nil
}

func optionalInt(c *gin.Context, field string) (*int, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", field, raw)
	}
	return &value, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinComma(values []string) string {
	return strings.Join(values, ",")
}

func joinLines(values []string) string {
	return strings.Join(values, "\n")
}
