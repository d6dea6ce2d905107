package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Feeds      FeedsConfig      `toml:"feeds"`
	Export     ExportConfig     `toml:"export"`
	WordPress  WordPressConfig  `toml:"wordpress"`
	Categories CategoriesConfig `toml:"categories"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// FeedsConfig holds RSS feed fetch settings.
type FeedsConfig struct {
	MaxPostsPerFeed int `toml:"max_posts_per_feed"`
	LookbackDays    int `toml:"lookback_days"`

	// ExtractMissingDescriptions fetches the article page and extracts a
	// readability excerpt for feed items that carry no description.
	ExtractMissingDescriptions bool `toml:"extract_missing_descriptions"`
}

// ExportConfig holds digest export settings.
type ExportConfig struct {
	OutputDir       string `toml:"output_dir"`
	DefaultFormat   string `toml:"default_format"` // "html" or "markdown"
	TitlePrefix     string `toml:"title_prefix"`
	ContentIDPrefix string `toml:"content_id_prefix"`
}

// WordPressConfig holds WordPress REST API settings. AppPassword is an
// application password, not the account password.
type WordPressConfig struct {
	BaseURL       string `toml:"base_url"`
	Username      string `toml:"username"`
	AppPassword   string `toml:"app_password"`
	DefaultStatus string `toml:"default_status"` // "draft" or "publish"
}

// CategoriesConfig points at the keyword rules file.
type CategoriesConfig struct {
	RulesPath string `toml:"rules_path"`
}

const defaultConfigContent = `[server]
port = 8080

[feeds]
max_posts_per_feed = 20
lookback_days = 7
extract_missing_descriptions = false

[export]
output_dir = "./digests"
default_format = "markdown"        # "html" or "markdown"
title_prefix = "Dew Drop"
content_id_prefix = "dewdrop"

[wordpress]
base_url = ""                      # e.g. https://example.com
username = ""
app_password = ""                  # or set WORDPRESS_APP_PASSWORD env var
default_status = "draft"           # "draft" or "publish"

[categories]
rules_path = "categories.json"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("feeds", "lookback_days") {
		if cfg.Feeds.LookbackDays < 1 {
			return fmt.Errorf("invalid feeds.lookback_days %d: must be >= 1", cfg.Feeds.LookbackDays)
		}
	}
	if md.IsDefined("export", "default_format") {
		if cfg.Export.DefaultFormat != "html" && cfg.Export.DefaultFormat != "markdown" {
			return fmt.Errorf("invalid export.default_format %q: must be \"html\" or \"markdown\"", cfg.Export.DefaultFormat)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Feeds.MaxPostsPerFeed == 0 {
		cfg.Feeds.MaxPostsPerFeed = 20
	}
	if cfg.Feeds.LookbackDays == 0 {
		cfg.Feeds.LookbackDays = 7
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "./digests"
	}
	if cfg.Export.DefaultFormat == "" {
		cfg.Export.DefaultFormat = "markdown"
	}
	if cfg.Export.TitlePrefix == "" {
		cfg.Export.TitlePrefix = "Dew Drop"
	}
	if cfg.Export.ContentIDPrefix == "" {
		cfg.Export.ContentIDPrefix = "dewdrop"
	}
	if cfg.WordPress.DefaultStatus == "" {
		cfg.WordPress.DefaultStatus = "draft"
	}
	if cfg.Categories.RulesPath == "" {
		cfg.Categories.RulesPath = "categories.json"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WORDPRESS_BASE_URL"); v != "" {
		cfg.WordPress.BaseURL = v
	}
	if v := os.Getenv("WORDPRESS_USERNAME"); v != "" {
		cfg.WordPress.Username = v
	}
	if v := os.Getenv("WORDPRESS_APP_PASSWORD"); v != "" {
		cfg.WordPress.AppPassword = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.Feeds.LookbackDays < 1 {
		return fmt.Errorf("invalid feeds.lookback_days %d: must be >= 1", cfg.Feeds.LookbackDays)
	}

	switch cfg.Export.DefaultFormat {
	case "html", "markdown":
		// valid
	default:
		return fmt.Errorf("invalid export.default_format %q: must be \"html\" or \"markdown\"", cfg.Export.DefaultFormat)
	}

	switch cfg.WordPress.DefaultStatus {
	case "draft", "publish":
		// valid
	default:
		return fmt.Errorf("invalid wordpress.default_status %q: must be \"draft\" or \"publish\"", cfg.WordPress.DefaultStatus)
	}

	if cfg.WordPress.BaseURL == "" {
		slog.Warn("wordpress.base_url is empty: publishing is disabled until it is configured")
	}

	return nil
}
