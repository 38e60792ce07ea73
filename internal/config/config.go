// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nathanj/recorder-agent/internal/storage"
)

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Search range. Dates are MM/DD/YYYY; ISO yyyy-mm-dd is accepted and
	// normalized at submission time. Anything else passes through to the
	// search form, whose own validation is the backstop.
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// Target site
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Local output
	OutputFile  string `json:"output_file,omitempty" yaml:"output_file,omitempty"`   // Records JSONL path
	ArtifactDir string `json:"artifact_dir,omitempty" yaml:"artifact_dir,omitempty"` // Root of the year/month PDF tree
	DownloadDir string `json:"download_dir,omitempty" yaml:"download_dir,omitempty"` // Browser download staging dir

	// External services
	DatabaseURL   string               `json:"database_url,omitempty" yaml:"database_url,omitempty"`     // PostgreSQL connection URL
	StatusWebhook string               `json:"status_webhook,omitempty" yaml:"status_webhook,omitempty" validate:"omitempty,url"` // Progress webhook URL
	Storage       *storage.MinioConfig `json:"storage,omitempty" yaml:"storage,omitempty"`               // Object store for PDFs and checkpoint

	// Behavior
	ShowBrowser bool `json:"show_browser,omitempty" yaml:"show_browser,omitempty"` // Run with a visible browser window
	Verbose     bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Print detailed debug information
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Storage != nil {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("config error: 'storage.endpoint' is required when storage is configured")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("config error: 'storage.bucket' is required when storage is configured")
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.StartDate == "" {
		result.StartDate = defaults.StartDate
	}
	if result.EndDate == "" {
		result.EndDate = defaults.EndDate
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.OutputFile == "" {
		result.OutputFile = defaults.OutputFile
	}
	if result.ArtifactDir == "" {
		result.ArtifactDir = defaults.ArtifactDir
	}
	if result.DownloadDir == "" {
		result.DownloadDir = defaults.DownloadDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.StatusWebhook == "" {
		result.StatusWebhook = defaults.StatusWebhook
	}

	if result.Storage == nil {
		result.Storage = defaults.Storage
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
