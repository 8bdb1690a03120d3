package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Input      InputConfig
	Output     OutputConfig
	Clustering ClusteringConfig
	Scoring    ScoringConfig
	Server     ServerConfig
}

// InputConfig describes the product catalog table
type InputConfig struct {
	Path       string `mapstructure:"path"`
	Delimiter  string `mapstructure:"delimiter"`
	CodeColumn string `mapstructure:"code_column"`
	NameColumn string `mapstructure:"name_column"`
}

// OutputConfig describes where clustering results are written
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`
	FullFile     string `mapstructure:"full_file"`
	GroupedFile  string `mapstructure:"grouped_file"`
	ExpandedFile string `mapstructure:"expanded_file"`
	Delimiter    string `mapstructure:"delimiter"`
	SQLitePath   string `mapstructure:"sqlite_path"` // empty disables the SQLite export
}

// ClusteringConfig holds clustering tuning knobs
type ClusteringConfig struct {
	Workers            int      `mapstructure:"workers"` // 0 = one per CPU
	NormalizeBucketKey bool     `mapstructure:"normalize_bucket_key"`
	Stopwords          []string `mapstructure:"stopwords"`
	Debug              bool     `mapstructure:"debug"`
}

// ScoringConfig holds chronicity scoring API configuration
type ScoringConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	Model             string  `mapstructure:"model"`
	CachePath         string  `mapstructure:"cache_path"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	MaxItems          int     `mapstructure:"max_items"` // 0 = no cap
	InputPath         string  `mapstructure:"input_path"`
	OutputPath        string  `mapstructure:"output_path"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load loads configuration from the environment, an optional .env file and config files
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into v, which may already carry bound flags
func LoadWith(v *viper.Viper) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/prefixlens/")

	// Environment variable settings
	v.SetEnvPrefix("PREFIXLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys written for the standalone scorer keep working
	if err := v.BindEnv("scoring.api_key", "PREFIXLENS_SCORING_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding env: %w", err)
	}

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Input defaults
	v.SetDefault("input.path", "produits_uniques.csv")
	v.SetDefault("input.delimiter", ";")
	v.SetDefault("input.code_column", "PRD_EAN13")
	v.SetDefault("input.name_column", "PRD_NOM")

	// Output defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.full_file", "produits_with_common.csv")
	v.SetDefault("output.grouped_file", "produits_grouped.csv")
	v.SetDefault("output.expanded_file", "produits_grouped_expanded.csv")
	v.SetDefault("output.delimiter", ";")
	v.SetDefault("output.sqlite_path", "")

	// Clustering defaults
	v.SetDefault("clustering.workers", 0)
	v.SetDefault("clustering.normalize_bucket_key", true)
	v.SetDefault("clustering.stopwords", []string{
		"GEL", "SERUM", "TROUSSE", "COUSSIN", "VERNIS",
		"SPRAY", "MASQUE", "CREME", "HUILE", "SHAMPOOING",
		"NEUT", "POMMADE", "CAPSULES", "COMPRIMES",
	})
	v.SetDefault("clustering.debug", false)

	// Scoring defaults
	v.SetDefault("scoring.api_key", "")
	v.SetDefault("scoring.base_url", "https://api.openai.com/v1")
	v.SetDefault("scoring.model", "gpt-4")
	v.SetDefault("scoring.cache_path", "cache.json")
	v.SetDefault("scoring.requests_per_second", 1/1.2) // one call every 1.2s
	v.SetDefault("scoring.burst", 1)
	v.SetDefault("scoring.max_items", 100)
	v.SetDefault("scoring.input_path", "products.csv")
	v.SetDefault("scoring.output_path", "products_scored.csv")

	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
}

// validate validates the configuration
func validate(config *Config) error {
	if utf8.RuneCountInString(config.Input.Delimiter) != 1 {
		return fmt.Errorf("input delimiter must be a single character, got: %q", config.Input.Delimiter)
	}

	if utf8.RuneCountInString(config.Output.Delimiter) != 1 {
		return fmt.Errorf("output delimiter must be a single character, got: %q", config.Output.Delimiter)
	}

	if config.Input.CodeColumn == "" || config.Input.NameColumn == "" {
		return fmt.Errorf("input code and name columns are required")
	}

	if config.Clustering.Workers < 0 {
		return fmt.Errorf("clustering workers must be >= 0, got: %d", config.Clustering.Workers)
	}

	if config.Scoring.RequestsPerSecond <= 0 {
		return fmt.Errorf("scoring requests_per_second must be > 0, got: %v", config.Scoring.RequestsPerSecond)
	}

	if config.Scoring.MaxItems < 0 {
		return fmt.Errorf("scoring max_items must be >= 0, got: %d", config.Scoring.MaxItems)
	}

	return nil
}

// ValidateScoring checks the settings needed to call the scoring API
func (c *Config) ValidateScoring() error {
	if c.Scoring.APIKey == "" {
		return fmt.Errorf("scoring API key is required (set PREFIXLENS_SCORING_API_KEY or OPENAI_API_KEY)")
	}
	if c.Scoring.BaseURL == "" {
		return fmt.Errorf("scoring base URL is required")
	}
	return nil
}

// Rune returns the first rune of a validated delimiter setting
func Rune(delimiter string) rune {
	r, _ := utf8.DecodeRuneInString(delimiter)
	return r
}

// loadEnvFile loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
