// Package config loads application settings from an optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/ats-resume-builder/internal/llm"
)

// Log formats accepted by LOG_FORMAT.
const (
	LogFormatText  = "text"
	LogFormatJSON  = "json"
	LogFormatColor = "color"
)

// Config holds every setting of the server and CLI. Values come from, in order
// of precedence: environment variables, the file named by CONFIG_FILE, defaults.
type Config struct {
	Port int `env:"PORT" yaml:"port"`

	// LLM
	LLMProvider      string        `env:"LLM_PROVIDER" yaml:"llm_provider"`
	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY" yaml:"openrouter_api_key"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	LLMModel         string        `env:"LLM_MODEL" yaml:"llm_model"`
	LLMTemperature   float64       `env:"LLM_TEMPERATURE" yaml:"llm_temperature"`
	LLMMaxTokens     int           `env:"LLM_MAX_TOKENS" yaml:"llm_max_tokens"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" yaml:"llm_timeout"`
	LLMBaseURL       string        `env:"LLM_BASE_URL" yaml:"llm_base_url"`
	LLMReferer       string        `env:"LLM_REFERER" yaml:"llm_referer"`
	LLMTitle         string        `env:"LLM_TITLE" yaml:"llm_title"`
	MaxPromptTokens  int           `env:"MAX_PROMPT_TOKENS" yaml:"max_prompt_tokens"`

	// HTTP
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," yaml:"cors_origins"`
	UseBrowser  bool     `env:"USE_BROWSER" yaml:"use_browser"`

	// Optional integrations
	DatabaseURL     string        `env:"DATABASE_URL" yaml:"database_url"`
	ExportBucket    string        `env:"EXPORT_BUCKET" yaml:"export_bucket"`
	ExportRegion    string        `env:"EXPORT_REGION" yaml:"export_region"`
	ExportEndpoint  string        `env:"EXPORT_ENDPOINT" yaml:"export_endpoint"`
	ExportAccessKey string        `env:"EXPORT_ACCESS_KEY" yaml:"export_access_key"`
	ExportSecretKey string        `env:"EXPORT_SECRET_KEY" yaml:"export_secret_key"`
	ExportURLTTL    time.Duration `env:"EXPORT_URL_TTL" yaml:"export_url_ttl"`
	AMQPURL         string        `env:"AMQP_URL" yaml:"amqp_url"`
	AMQPExchange    string        `env:"AMQP_EXCHANGE" yaml:"amqp_exchange"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" yaml:"log_format"`
	LogFile   string `env:"LOG_FILE" yaml:"log_file"`

	RateLimit RateLimit `yaml:"rate_limit"`
}

// RateLimit configures the per-client token buckets of the HTTP server.
type RateLimit struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" yaml:"enabled"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" yaml:"default_limit"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" yaml:"default_window"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" yaml:"cleanup_interval"`
	OptimizeLimit   int           `env:"RATE_LIMIT_OPTIMIZE_LIMIT" yaml:"optimize_limit"`
	OptimizeWindow  time.Duration `env:"RATE_LIMIT_OPTIMIZE_WINDOW" yaml:"optimize_window"`
	OptimizeBurst   int           `env:"RATE_LIMIT_OPTIMIZE_BURST" yaml:"optimize_burst"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:"," yaml:"whitelist"`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:"," yaml:"blacklist"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:           3001,
		LLMProvider:    string(llm.ProviderOpenRouter),
		LLMTemperature: 0.2,
		LLMMaxTokens:   6000,
		LLMTimeout:     llm.DefaultTimeout,
		LLMReferer:     llm.DefaultReferer,
		LLMTitle:       llm.DefaultTitle,
		CORSOrigins:    []string{"http://localhost:3000", "http://localhost:3001"},
		ExportURLTTL:   15 * time.Minute,
		AMQPExchange:   "resume_events",
		LogLevel:       "info",
		LogFormat:      LogFormatColor,
		RateLimit: RateLimit{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			OptimizeLimit:   10,
			OptimizeWindow:  time.Hour,
			OptimizeBurst:   2,
		},
	}
}

// Load builds the configuration from CONFIG_FILE (when set) and the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"), nil)
}

// LoadFrom builds the configuration from path (skipped when empty) and then
// environ. A nil environ means the process environment.
func LoadFrom(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return cfg, nil
}

// loadFile overlays a YAML or JSON file on cfg. Keys absent from the file keep
// their current values.
func (c *Config) loadFile(path string) error {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// JSON documents are valid YAML, so one decoder serves both.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Provider returns the configured LLM provider.
func (c *Config) Provider() llm.Provider {
	provider, _ := llm.ParseProvider(c.LLMProvider)
	return provider
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider() == llm.ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenRouterAPIKey
}

// LLMConfig returns the client configuration for the configured provider.
func (c *Config) LLMConfig() *llm.Config {
	var cfg *llm.Config
	if c.Provider() == llm.ProviderGemini {
		cfg = llm.DefaultGeminiConfig()
	} else {
		cfg = llm.DefaultOpenRouterConfig()
		cfg.Referer = c.LLMReferer
		cfg.Title = c.LLMTitle
		if c.LLMBaseURL != "" {
			cfg.BaseURL = c.LLMBaseURL
		}
	}
	if c.LLMModel != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.LLMModel)
	}
	cfg.Temperature = c.LLMTemperature
	cfg.MaxTokens = c.LLMMaxTokens
	cfg.Timeout = c.LLMTimeout
	return cfg
}

// HistoryEnabled reports whether runs are persisted.
func (c *Config) HistoryEnabled() bool { return c.DatabaseURL != "" }

// StorageEnabled reports whether exports can be uploaded.
func (c *Config) StorageEnabled() bool { return c.ExportBucket != "" }

// EventsEnabled reports whether run events are published.
func (c *Config) EventsEnabled() bool { return c.AMQPURL != "" }

// Validate checks every setting used to talk to the LLM and serve HTTP and
// reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, ok := llm.ParseProvider(c.LLMProvider); !ok {
		result = multierror.Append(result, fmt.Errorf("unknown LLM_PROVIDER %q (use openrouter or gemini)", c.LLMProvider))
	} else if c.APIKey() == "" {
		if c.Provider() == llm.ProviderGemini {
			result = multierror.Append(result, errors.New("GEMINI_API_KEY is required"))
		} else {
			result = multierror.Append(result, errors.New("OPENROUTER_API_KEY is required"))
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		result = multierror.Append(result, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %g", c.LLMTemperature))
	}
	if c.LLMMaxTokens <= 0 {
		result = multierror.Append(result, errors.New("LLM_MAX_TOKENS must be positive"))
	}
	if c.LLMTimeout <= 0 {
		result = multierror.Append(result, errors.New("LLM_TIMEOUT must be positive"))
	}
	if c.MaxPromptTokens < 0 {
		result = multierror.Append(result, errors.New("MAX_PROMPT_TOKENS must be zero or positive"))
	}

	if c.StorageEnabled() {
		if c.ExportRegion == "" {
			result = multierror.Append(result, errors.New("EXPORT_REGION is required when EXPORT_BUCKET is set"))
		}
		if c.ExportURLTTL <= 0 {
			result = multierror.Append(result, errors.New("EXPORT_URL_TTL must be positive"))
		}
		if (c.ExportAccessKey == "") != (c.ExportSecretKey == "") {
			result = multierror.Append(result, errors.New("EXPORT_ACCESS_KEY and EXPORT_SECRET_KEY must be set together"))
		}
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatColor:
	default:
		result = multierror.Append(result, fmt.Errorf("LOG_FORMAT must be text, json or color, got %q", c.LogFormat))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		result = multierror.Append(result, fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit < 0 || c.RateLimit.OptimizeLimit < 0 {
			result = multierror.Append(result, errors.New("rate limits must not be negative"))
		}
		if c.RateLimit.DefaultWindow <= 0 || c.RateLimit.OptimizeWindow <= 0 {
			result = multierror.Append(result, errors.New("rate limit windows must be positive"))
		}
	}

	return result.ErrorOrNil()
}

// LogValue implements slog.LogValuer. Secrets are reported only as set or unset.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("port", c.Port),
		slog.String("llm_provider", c.LLMProvider),
		slog.String("llm_model", c.LLMConfig().GetModel(llm.TierStandard)),
		slog.Bool("api_key_configured", c.APIKey() != ""),
		slog.Duration("llm_timeout", c.LLMTimeout),
		slog.Int("max_prompt_tokens", c.MaxPromptTokens),
		slog.Any("cors_origins", c.CORSOrigins),
		slog.Bool("history", c.HistoryEnabled()),
		slog.Bool("export_storage", c.StorageEnabled()),
		slog.Bool("events", c.EventsEnabled()),
		slog.Bool("browser_fetch", c.UseBrowser),
		slog.Bool("rate_limit", c.RateLimit.Enabled),
	)
}
