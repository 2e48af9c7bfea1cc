package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Import  ImportConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds extraction API configuration
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	FlashModel string `mapstructure:"flash_model"` // image + messy-text extraction
	ProModel   string `mapstructure:"pro_model"`   // search-grounded URL extraction
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	Type string `mapstructure:"type"` // "file" or "sqlite"
	Path string `mapstructure:"path"`
}

// ImportConfig holds ingestion pipeline tuning
type ImportConfig struct {
	MessyThreshold     float64 `mapstructure:"messy_threshold"`
	MaxBlockChars      int     `mapstructure:"max_block_chars"`
	HeaderScanRows     int     `mapstructure:"header_scan_rows"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricemarkup/")

	// Environment variable settings
	v.SetEnvPrefix("PRICEMARKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.flash_model", "gemini-3-flash-preview")
	v.SetDefault("gemini.pro_model", "gemini-3-pro-preview")

	// Storage defaults
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.path", "./data")

	// Import defaults
	v.SetDefault("import.messy_threshold", 0.4)
	v.SetDefault("import.max_block_chars", 8000)
	v.SetDefault("import.header_scan_rows", 20)
	v.SetDefault("import.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set PRICEMARKUP_GEMINI_API_KEY)")
	}

	if config.Storage.Type != "file" && config.Storage.Type != "sqlite" {
		return fmt.Errorf("storage type must be 'file' or 'sqlite', got: %s", config.Storage.Type)
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if config.Import.MessyThreshold <= 0 || config.Import.MessyThreshold > 1 {
		return fmt.Errorf("import messy_threshold must be in (0, 1], got: %v", config.Import.MessyThreshold)
	}

	return nil
}
