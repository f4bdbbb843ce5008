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
	News    NewsConfig    `toml:"news"`
	AI      AIConfig      `toml:"ai"`
	Limiter LimiterConfig `toml:"limiter"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// NewsConfig holds headline source settings.
type NewsConfig struct {
	Provider string   `toml:"provider"`
	APIKey   string   `toml:"api_key"`
	BaseURL  string   `toml:"base_url"`
	Country  string   `toml:"country"`
	Category string   `toml:"category"`
	PageSize int      `toml:"page_size"`
	Feeds    []string `toml:"feeds"`
}

// AIConfig holds language model provider settings.
type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// LimiterConfig holds the pacing and retry settings for model calls.
type LimiterConfig struct {
	BaseDelayMS int `toml:"base_delay_ms"`
	MaxDelayMS  int `toml:"max_delay_ms"`
	MaxRetries  int `toml:"max_retries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MaxPageSize is the largest number of headlines a listing may hold.
const MaxPageSize = 12

const defaultConfigContent = `[news]
provider = "newsapi"              # "newsapi" or "rss"
api_key = ""                      # Your NewsAPI key (or set NEWS_API_KEY env var)
base_url = "https://newsapi.org"
country = "us"
category = ""                     # e.g. "technology", "business"; empty for all
page_size = 12                    # 1-12
feeds = []                        # RSS/Atom feed URLs, used when provider = "rss"

[ai]
provider = "openai"               # "openai" or "anthropic"
api_key = ""                      # Your API key (or set AI_API_KEY env var)
model = "gpt-3.5-turbo"
base_url = ""                     # Optional API base URL override

[limiter]
base_delay_ms = 1500
max_delay_ms = 10000
max_retries = 3

[server]
port = 8080
auto_open_browser = true

[log]
level = "info"                    # "debug", "info", "warn", "error"
format = "text"                   # "text" or "json"
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
	// max_retries = 0 disables retries, so only an absent key gets the default.
	if !md.IsDefined("limiter", "max_retries") {
		cfg.Limiter.MaxRetries = 3
	}
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
// Zero is a valid-looking TOML value for all of these but would otherwise be
// replaced by the default.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("news", "page_size") {
		if cfg.News.PageSize < 1 || cfg.News.PageSize > MaxPageSize {
			return fmt.Errorf("invalid news.page_size %d: must be between 1 and %d", cfg.News.PageSize, MaxPageSize)
		}
	}
	if md.IsDefined("limiter", "base_delay_ms") && cfg.Limiter.BaseDelayMS < 1 {
		return fmt.Errorf("invalid limiter.base_delay_ms %d: must be >= 1", cfg.Limiter.BaseDelayMS)
	}
	if md.IsDefined("limiter", "max_delay_ms") && cfg.Limiter.MaxDelayMS < 1 {
		return fmt.Errorf("invalid limiter.max_delay_ms %d: must be >= 1", cfg.Limiter.MaxDelayMS)
	}
	if md.IsDefined("limiter", "max_retries") && cfg.Limiter.MaxRetries < 0 {
		return fmt.Errorf("invalid limiter.max_retries %d: must be >= 0", cfg.Limiter.MaxRetries)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.News.Provider == "" {
		cfg.News.Provider = "newsapi"
	}
	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = "https://newsapi.org"
	}
	if cfg.News.Country == "" {
		cfg.News.Country = "us"
	}
	if cfg.News.PageSize == 0 {
		cfg.News.PageSize = MaxPageSize
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case "anthropic":
			cfg.AI.Model = "claude-haiku-4-5"
		default:
			cfg.AI.Model = "gpt-3.5-turbo"
		}
	}

	if cfg.Limiter.BaseDelayMS == 0 {
		cfg.Limiter.BaseDelayMS = 1500
	}
	if cfg.Limiter.MaxDelayMS == 0 {
		cfg.Limiter.MaxDelayMS = 10000
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	// auto_open_browser is left alone: a missing bool decodes as false and we
	// respect that. The generated default file sets it to true.

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. OPENAI_API_KEY (when provider is "openai")
//  3. ANTHROPIC_API_KEY (when provider is "anthropic")
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.News.APIKey = v
	}

	// Apply provider-specific env var first (lower priority).
	switch cfg.AI.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	// AI_API_KEY overrides everything (highest priority).
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.News.Provider {
	case "newsapi", "rss":
		// valid
	default:
		return fmt.Errorf("invalid news.provider %q: must be \"newsapi\" or \"rss\"", cfg.News.Provider)
	}

	switch cfg.AI.Provider {
	case "anthropic", "openai":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\" or \"anthropic\"", cfg.AI.Provider)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.News.PageSize < 1 || cfg.News.PageSize > MaxPageSize {
		return fmt.Errorf("invalid news.page_size %d: must be between 1 and %d", cfg.News.PageSize, MaxPageSize)
	}

	if cfg.Limiter.MaxDelayMS < cfg.Limiter.BaseDelayMS {
		return fmt.Errorf("invalid limiter.max_delay_ms %d: must be >= base_delay_ms %d",
			cfg.Limiter.MaxDelayMS, cfg.Limiter.BaseDelayMS)
	}

	switch cfg.Log.Format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("invalid log.format %q: must be \"text\" or \"json\"", cfg.Log.Format)
	}

	if cfg.News.Provider == "newsapi" && cfg.News.APIKey == "" {
		slog.Warn("news.api_key is empty: set it in the config file or via NEWS_API_KEY environment variable")
	}
	if cfg.News.Provider == "rss" && len(cfg.News.Feeds) == 0 {
		return fmt.Errorf("news.feeds must list at least one feed URL when news.provider is \"rss\"")
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: set it in the config file or via AI_API_KEY environment variable")
	}

	return nil
}
