package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Shopify
	ShopifyStoreURL    string
	ShopifyAccessToken string
	ShopifyAPIVersion  string

	// AI Vision
	GeminiAPIKey string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite://marketpush.db"),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", ""),
		APIPort:            getEnv("API_PORT", "8080"),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		ShopifyStoreURL:    getEnv("SHOPIFY_STORE_URL", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
