// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Sources
	URL       string `json:"url,omitempty"`        // Page URL to scan
	Kind      string `json:"kind,omitempty"`       // Source kind: news or forum
	ImportCSV string `json:"import_csv,omitempty"` // Path to a CSV of candidate texts

	// Matching
	RulesPath string `json:"rules_path,omitempty"` // Path to the keyword rules JSON file

	// Scoring
	Team                 string `json:"team,omitempty"`                   // Team identifier owning the prospects
	AutoPromoteThreshold int    `json:"auto_promote_threshold,omitempty"` // Confidence score at or above which discoveries auto-promote (0-100)
	FanOut               int    `json:"fan_out,omitempty"`                // Concurrent workers per scan run

	// Relationship graph backend
	GraphBaseURL string `json:"graph_base_url,omitempty"` // Graph backend base URL
	GraphAPIKey  string `json:"graph_api_key,omitempty"`  // Graph backend API key
	GraphDelayMs int    `json:"graph_delay_ms,omitempty"` // Minimum milliseconds between graph queries

	// Behavior
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA sites
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Port        int    `json:"port,omitempty"`         // HTTP server port
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
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
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.URL != "" && c.ImportCSV != "" {
		return fmt.Errorf("config error: 'url' and 'import_csv' are mutually exclusive")
	}

	if c.Kind != "" && c.Kind != "news" && c.Kind != "forum" {
		return fmt.Errorf("config error: 'kind' must be news or forum")
	}

	// Validate numeric ranges
	if c.AutoPromoteThreshold < 0 || c.AutoPromoteThreshold > 100 {
		return fmt.Errorf("config error: 'auto_promote_threshold' must be between 0 and 100")
	}
	if c.FanOut < 0 {
		return fmt.Errorf("config error: 'fan_out' must be non-negative")
	}
	if c.GraphDelayMs < 0 {
		return fmt.Errorf("config error: 'graph_delay_ms' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid port number")
	}

	// Validate file paths exist (if specified)
	if c.RulesPath != "" {
		if _, err := os.Stat(c.RulesPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules file not found: %s", c.RulesPath)
		}
	}

	if c.ImportCSV != "" {
		if _, err := os.Stat(c.ImportCSV); os.IsNotExist(err) {
			return fmt.Errorf("config error: import file not found: %s", c.ImportCSV)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.URL == "" {
		result.URL = defaults.URL
	}
	if result.Kind == "" {
		result.Kind = defaults.Kind
	}
	if result.ImportCSV == "" {
		result.ImportCSV = defaults.ImportCSV
	}
	if result.RulesPath == "" {
		result.RulesPath = defaults.RulesPath
	}
	if result.Team == "" {
		result.Team = defaults.Team
	}
	if result.GraphBaseURL == "" {
		result.GraphBaseURL = defaults.GraphBaseURL
	}
	if result.GraphAPIKey == "" {
		result.GraphAPIKey = defaults.GraphAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.AutoPromoteThreshold == 0 {
		result.AutoPromoteThreshold = defaults.AutoPromoteThreshold
	}
	if result.FanOut == 0 {
		result.FanOut = defaults.FanOut
	}
	if result.GraphDelayMs == 0 {
		result.GraphDelayMs = defaults.GraphDelayMs
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
