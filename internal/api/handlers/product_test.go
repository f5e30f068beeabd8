package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketpush/internal/ai"
	"marketpush/internal/bulk"
	"marketpush/internal/config"
	"marketpush/internal/events"
	"marketpush/internal/logger"
	"marketpush/internal/marketplace"
	"marketpush/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubCreator struct {
	calls int
	err   error
}

func (s *stubCreator) Create(req *models.ProductRequest, imgs []models.ImageFile) (*models.PublishResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.PublishResult{
		Product:     &models.RemoteProduct{ID: "gid://shopify/Product/1", Title: req.Title, Status: "ACTIVE"},
		TotalImages: len(imgs),
	}, nil
}

func newTestRouter(shopify *stubCreator) (*gin.Engine, *ProductHandler) {
	gin.SetMode(gin.TestMode)
	log := logger.New("error")

	dispatcher := marketplace.NewDispatcher(shopify, &stubCreator{}, &stubCreator{}, log)
	vision := ai.New(&config.Config{}, log)
	producer := events.NewProducer("", log)

	handler := NewProductHandler(
		nil,
		log,
		vision,
		dispatcher,
		bulk.New(dispatcher, log),
		bulk.NewAI(dispatcher, vision, log),
		nil,
		producer,
	)

	router := gin.New()
	products := router.Group("/api/v1/products")
	{
		products.POST("", handler.Create)
		products.GET("/ai-status", handler.AIStatus)
		products.POST("/bulk-upload", handler.BulkUpload)
		products.POST("/bulk-upload-ai", handler.BulkUploadAI)
	}
	return router, handler
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("csvFile", name)
		assert.NoError(t, err)
		_, err = part.Write(content)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateRequiresMarketplace(t *testing.T) {
	router, _ := newTestRouter(&stubCreator{})

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Mug",
		"description": "A mug",
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Marketplace is required", resp["message"])
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	shopify := &stubCreator{}
	router, _ := newTestRouter(shopify)

	body, contentType := multipartBody(t, map[string]string{
		"description": "A mug",
		"marketplace": "shopify",
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, shopify.calls)
}

func TestCreatePublishesToShopify(t *testing.T) {
	shopify := &stubCreator{}
	router, _ := newTestRouter(shopify)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Mug",
		"description": "A mug",
		"marketplace": "shopify",
		"price":       "29.99",
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, shopify.calls)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestCreatePublishFailureIsServerError(t *testing.T) {
	shopify := &stubCreator{err: fmt.Errorf("remote says no")}
	router, _ := newTestRouter(shopify)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Mug",
		"description": "A mug",
		"marketplace": "shopify",
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "remote says no", resp["error"])
}

func TestAIStatusUnconfigured(t *testing.T) {
	router, _ := newTestRouter(&stubCreator{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/ai-status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["configured"])
	assert.Equal(t, false, resp["success"])
}

func TestBulkUploadRequiresCSV(t *testing.T) {
	router, _ := newTestRouter(&stubCreator{})

	body, contentType := multipartBody(t, map[string]string{"marketplace": "shopify"}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/bulk-upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CSV file is required", resp["message"])
}

func TestBulkUploadProcessesRows(t *testing.T) {
	shopify := &stubCreator{}
	router, _ := newTestRouter(shopify)

	// Folder paths are bogus so each row fails after parsing; the
	// request itself still succeeds with a per-row report.
	csv := "title,description,folderPath\nMug,A mug,/nonexistent\n"
	body, contentType := multipartBody(t,
		map[string]string{"marketplace": "shopify"},
		map[string][]byte{"products.csv": []byte(csv)},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/bulk-upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool        `json:"success"`
		Data    bulk.Report `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.TotalProcessed)
	assert.Equal(t, 1, resp.Data.FailedCount)
	assert.Equal(t, 0, shopify.calls)
}

func TestBulkUploadAIRequiresConfiguredVision(t *testing.T) {
	router, _ := newTestRouter(&stubCreator{})

	csv := "id,folderPath\nsku-1,/nonexistent\n"
	body, contentType := multipartBody(t,
		map[string]string{"marketplace": "shopify"},
		map[string][]byte{"products.csv": []byte(csv)},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/bulk-upload-ai", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "AI Vision not configured")
}
