// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	threshold := cfg.Matching.PartialAmountThreshold
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported formats
const (
	SourceFormatBank = "bank"
	SourceFormatCard = "card"

	OutputFormatCSV    = "csv"
	OutputFormatXLSX   = "xlsx"
	OutputFormatSQLite = "sqlite"
)

// Defaults used when a value is missing from both file and environment
const (
	DefaultPartialAmountThreshold    = 5.00
	DefaultPartialDateMatchThreshold = 5
	DefaultDateLayout                = "2006-01-02"
	DefaultDatabasePath              = "reconciler.db"
	DefaultAPIPort                   = 8085
)

// Config represents the entire application configuration
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Input         InputConfig         `yaml:"input"`
	Output        OutputConfig        `yaml:"output"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig holds the candidate generator tolerances
type MatchingConfig struct {
	PartialAmountThreshold    float64 `yaml:"partial_amount_threshold"`
	PartialDateMatchThreshold float64 `yaml:"partial_date_match_threshold"` // days
}

// InputConfig describes where the statement and ledger are read from
type InputConfig struct {
	SourcePath   string `yaml:"source_path"`
	SourceFormat string `yaml:"source_format"` // "bank" or "card"
	TargetPath   string `yaml:"target_path"`   // .csv, .xlsx, or empty to read the ledger from storage
	DateLayout   string `yaml:"date_layout"`
}

// OutputConfig describes where the finalized ledger is written
type OutputConfig struct {
	Format string `yaml:"format"` // "csv", "xlsx" or "sqlite"
	Path   string `yaml:"path"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds run history API settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" (bracketed console) or "json"
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${STATEMENT_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Matching: MatchingConfig{
			PartialAmountThreshold:    getEnvFloat("RECONCILER_AMOUNT_THRESHOLD", DefaultPartialAmountThreshold),
			PartialDateMatchThreshold: getEnvFloat("RECONCILER_DATE_THRESHOLD", DefaultPartialDateMatchThreshold),
		},
		Input: InputConfig{
			SourcePath:   os.Getenv("RECONCILER_SOURCE"),
			SourceFormat: getEnv("RECONCILER_SOURCE_FORMAT", SourceFormatBank),
			TargetPath:   os.Getenv("RECONCILER_LEDGER"),
			DateLayout:   getEnv("RECONCILER_DATE_LAYOUT", DefaultDateLayout),
		},
		Output: OutputConfig{
			Format: os.Getenv("RECONCILER_OUTPUT_FORMAT"),
			Path:   os.Getenv("RECONCILER_OUTPUT"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILER_DB_PATH", DefaultDatabasePath),
		},
		API: APIConfig{
			Port:           getEnvInt("API_PORT", DefaultAPIPort),
			AllowedOrigins: splitList(os.Getenv("API_ALLOWED_ORIGINS")),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// ApplyDefaults fills zero values. The output format follows the output
// file extension, or the ledger's when no output path is set.
func (c *Config) ApplyDefaults() {
	if c.Matching.PartialAmountThreshold == 0 {
		c.Matching.PartialAmountThreshold = DefaultPartialAmountThreshold
	}
	if c.Matching.PartialDateMatchThreshold == 0 {
		c.Matching.PartialDateMatchThreshold = DefaultPartialDateMatchThreshold
	}
	if c.Input.SourceFormat == "" {
		c.Input.SourceFormat = SourceFormatBank
	}
	if c.Input.DateLayout == "" {
		c.Input.DateLayout = DefaultDateLayout
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}
	if c.Output.Format == "" {
		path := c.Output.Path
		if path == "" {
			path = c.Input.TargetPath
		}
		c.Output.Format = formatFromPath(path)
	}
	if c.Output.Path == "" && c.Output.Format != OutputFormatSQLite {
		c.Output.Path = c.Input.TargetPath
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate checks the settings a reconciliation run needs
func (c *Config) Validate() error {
	if c.Input.SourcePath == "" {
		return fmt.Errorf("input.source_path is required")
	}
	switch c.Input.SourceFormat {
	case SourceFormatBank, SourceFormatCard:
	default:
		return fmt.Errorf("unknown input.source_format %q (want bank or card)", c.Input.SourceFormat)
	}
	switch c.Output.Format {
	case OutputFormatCSV, OutputFormatXLSX:
		if c.Output.Path == "" {
			return fmt.Errorf("output.path is required for %s output", c.Output.Format)
		}
	case OutputFormatSQLite:
	default:
		return fmt.Errorf("unknown output.format %q (want csv, xlsx or sqlite)", c.Output.Format)
	}
	if c.Matching.PartialAmountThreshold < 0 || c.Matching.PartialDateMatchThreshold < 0 {
		return fmt.Errorf("matching thresholds must not be negative")
	}
	return nil
}

func formatFromPath(path string) string {
	switch {
	case path == "":
		return OutputFormatSQLite
	case strings.HasSuffix(strings.ToLower(path), ".xlsx"):
		return OutputFormatXLSX
	default:
		return OutputFormatCSV
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
