package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pricemarkup/backend/config"
	httpDelivery "github.com/pricemarkup/backend/internal/delivery/http"
	"github.com/pricemarkup/backend/internal/domain"
	"github.com/pricemarkup/backend/internal/infrastructure/gemini"
	"github.com/pricemarkup/backend/internal/infrastructure/storage"
	"github.com/pricemarkup/backend/internal/usecase"
)

func main() {
	// Load .env in development; in production variables are set directly
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Load(); err == nil {
			log.Printf("Loaded environment variables from .env")
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceMarkup Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Storage: %s (%s)", cfg.Storage.Type, cfg.Storage.Path)

	// Initialize infrastructure dependencies
	store, cleanup, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer cleanup()

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.FlashModel, cfg.Gemini.ProModel)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}

	log.Printf("Gemini API configured: %s (models: %s, %s)", cfg.Gemini.BaseURL, cfg.Gemini.FlashModel, cfg.Gemini.ProModel)

	// Initialize usecase layer
	debugLogging := cfg.Import.EnableDebugLogging || cfg.Server.Environment == "development"
	catalogService := usecase.NewCatalogService(store, debugLogging)
	pricingService := usecase.NewPricingService()
	importService := usecase.NewImportService(geminiClient, catalogService, usecase.ImportServiceConfig{
		HeaderScanRows:     cfg.Import.HeaderScanRows,
		MessyThreshold:     cfg.Import.MessyThreshold,
		MaxBlockChars:      cfg.Import.MaxBlockChars,
		EnableDebugLogging: debugLogging,
	})

	log.Printf("Import: messy_threshold=%.2f, max_block_chars=%d, header_scan_rows=%d",
		cfg.Import.MessyThreshold, cfg.Import.MaxBlockChars, cfg.Import.HeaderScanRows)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(importService, catalogService, pricingService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newStore builds the persistence collaborator selected by configuration.
func newStore(cfg *config.Config) (domain.Store, func(), error) {
	switch cfg.Storage.Type {
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		s, err := storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
