package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("PRICEMARKUP_SERVER_PORT")
		os.Unsetenv("PRICEMARKUP_SERVER_ENVIRONMENT")
		os.Unsetenv("PRICEMARKUP_GEMINI_API_KEY")
		os.Unsetenv("PRICEMARKUP_GEMINI_BASE_URL")
		os.Unsetenv("PRICEMARKUP_GEMINI_FLASH_MODEL")
		os.Unsetenv("PRICEMARKUP_GEMINI_PRO_MODEL")
		os.Unsetenv("PRICEMARKUP_STORAGE_TYPE")
		os.Unsetenv("PRICEMARKUP_STORAGE_PATH")
		os.Unsetenv("PRICEMARKUP_IMPORT_MESSY_THRESHOLD")
		os.Unsetenv("PRICEMARKUP_IMPORT_MAX_BLOCK_CHARS")
		os.Unsetenv("PRICEMARKUP_IMPORT_HEADER_SCAN_ROWS")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("PRICEMARKUP_GEMINI_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Gemini.BaseURL != "https://generativelanguage.googleapis.com" {
			t.Errorf("Gemini.BaseURL = %s, want https://generativelanguage.googleapis.com", cfg.Gemini.BaseURL)
		}
		if cfg.Storage.Type != "file" {
			t.Errorf("Storage.Type = %s, want file", cfg.Storage.Type)
		}
		if cfg.Storage.Path != "./data" {
			t.Errorf("Storage.Path = %s, want ./data", cfg.Storage.Path)
		}
		if cfg.Import.MessyThreshold != 0.4 {
			t.Errorf("Import.MessyThreshold = %v, want 0.4", cfg.Import.MessyThreshold)
		}
		if cfg.Import.MaxBlockChars != 8000 {
			t.Errorf("Import.MaxBlockChars = %d, want 8000", cfg.Import.MaxBlockChars)
		}
		if cfg.Import.HeaderScanRows != 20 {
			t.Errorf("Import.HeaderScanRows = %d, want 20", cfg.Import.HeaderScanRows)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICEMARKUP_SERVER_PORT", "9090")
		os.Setenv("PRICEMARKUP_SERVER_ENVIRONMENT", "production")
		os.Setenv("PRICEMARKUP_GEMINI_API_KEY", "custom-api-key")
		os.Setenv("PRICEMARKUP_GEMINI_BASE_URL", "https://custom.api.com")
		os.Setenv("PRICEMARKUP_GEMINI_FLASH_MODEL", "flash-next")
		os.Setenv("PRICEMARKUP_STORAGE_TYPE", "sqlite")
		os.Setenv("PRICEMARKUP_STORAGE_PATH", "/tmp/pricemarkup.db")
		os.Setenv("PRICEMARKUP_IMPORT_MESSY_THRESHOLD", "0.6")
		os.Setenv("PRICEMARKUP_IMPORT_MAX_BLOCK_CHARS", "4000")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Gemini.APIKey != "custom-api-key" {
			t.Errorf("Gemini.APIKey = %s, want custom-api-key", cfg.Gemini.APIKey)
		}
		if cfg.Gemini.BaseURL != "https://custom.api.com" {
			t.Errorf("Gemini.BaseURL = %s, want https://custom.api.com", cfg.Gemini.BaseURL)
		}
		if cfg.Gemini.FlashModel != "flash-next" {
			t.Errorf("Gemini.FlashModel = %s, want flash-next", cfg.Gemini.FlashModel)
		}
		if cfg.Storage.Type != "sqlite" {
			t.Errorf("Storage.Type = %s, want sqlite", cfg.Storage.Type)
		}
		if cfg.Storage.Path != "/tmp/pricemarkup.db" {
			t.Errorf("Storage.Path = %s, want /tmp/pricemarkup.db", cfg.Storage.Path)
		}
		if cfg.Import.MessyThreshold != 0.6 {
			t.Errorf("Import.MessyThreshold = %v, want 0.6", cfg.Import.MessyThreshold)
		}
		if cfg.Import.MaxBlockChars != 4000 {
			t.Errorf("Import.MaxBlockChars = %d, want 4000", cfg.Import.MaxBlockChars)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
	})

	t.Run("fails validation for invalid storage type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICEMARKUP_GEMINI_API_KEY", "test-key")
		os.Setenv("PRICEMARKUP_STORAGE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid storage type")
		}
	})

	t.Run("fails validation for out-of-range messy threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRICEMARKUP_GEMINI_API_KEY", "test-key")
		os.Setenv("PRICEMARKUP_IMPORT_MESSY_THRESHOLD", "1.5")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for threshold > 1")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Gemini: GeminiConfig{
				APIKey:  "test-key",
				BaseURL: "https://generativelanguage.googleapis.com",
			},
			Storage: StorageConfig{
				Type: "file",
				Path: "./data",
			},
			Import: ImportConfig{
				MessyThreshold: 0.4,
				MaxBlockChars:  8000,
				HeaderScanRows: 20,
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Gemini.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty API key")
		}
	})

	t.Run("validates sqlite storage type", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Type = "sqlite"
		cfg.Storage.Path = "pricemarkup.db"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid sqlite config", err)
		}
	})

	t.Run("fails for unknown storage type", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Type = "memory"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for unknown storage type")
		}
	})

	t.Run("fails for empty storage path", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Path = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty storage path")
		}
	})

	t.Run("fails for zero messy threshold", func(t *testing.T) {
		cfg := valid()
		cfg.Import.MessyThreshold = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero threshold")
		}
	})
}
