package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketpush/internal/ai"
	"marketpush/internal/api/handlers"
	"marketpush/internal/api/middleware"
	"marketpush/internal/bulk"
	"marketpush/internal/config"
	"marketpush/internal/database"
	"marketpush/internal/events"
	"marketpush/internal/logger"
	"marketpush/internal/marketplace"
	"marketpush/internal/marketplace/amazon"
	"marketpush/internal/marketplace/meesho"
	"marketpush/internal/marketplace/shopify"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	db       *database.Database
	producer *events.Producer
	router   *gin.Engine
	server   *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Wire marketplaces
	shopifyClient := shopify.NewClient(cfg.ShopifyStoreURL, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, logger)
	dispatcher := marketplace.NewDispatcher(
		shopifyClient,
		amazon.New(logger),
		meesho.New(logger),
		logger,
	)

	// Wire services
	vision := ai.New(cfg, logger)
	producer := events.NewProducer(cfg.KafkaBrokers, logger)
	bulkSvc := bulk.New(dispatcher, logger)
	bulkAISvc := bulk.NewAI(dispatcher, vision, logger)
	metaSvc := bulk.NewMeta(shopifyClient, logger)

	productHandler := handlers.NewProductHandler(db.DB, logger, vision, dispatcher, bulkSvc, bulkAISvc, metaSvc, producer)

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "MarketPush API is running",
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.POST("/analyze-image", productHandler.AnalyzeImage)
			products.POST("/create-with-ai", productHandler.CreateWithAI)
			products.GET("/ai-status", productHandler.AIStatus)
			products.POST("/bulk-upload", productHandler.BulkUpload)
			products.POST("/bulk-upload-ai", productHandler.BulkUploadAI)
			products.POST("/meta-update", productHandler.MetaUpdate)
			products.GET("/history", productHandler.History)
		}
	}

	return &Server{
		config:   cfg,
		logger:   logger,
		db:       db,
		producer: producer,
		router:   router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.producer.Close()
	return s.server.Shutdown(ctx)
}

// GetRouter exposes the Gin router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
