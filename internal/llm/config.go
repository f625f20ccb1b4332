// Package llm provides LLM provider configuration and client abstractions.
// OpenRouter is the default provider; Gemini can be selected for direct Google access.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap, fast calls
	TierLite ModelTier = "lite"
	// TierStandard is used for resume optimization
	TierStandard ModelTier = "standard"
	// TierAdvanced is for callers that want the strongest configured model
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

const (
	// ProviderOpenRouter is the OpenRouter chat completions gateway
	ProviderOpenRouter Provider = "openrouter"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Default OpenRouter settings.
const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "deepseek/deepseek-chat-v3-0324:free"
	DefaultTitle             = "ATS Resume Builder"
	DefaultReferer           = "http://localhost:3001"
	DefaultTimeout           = 120 * time.Second
)

// Config holds the model configuration and sampling parameters.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64

	// BaseURL, Referer and Title only apply to OpenRouter.
	BaseURL string
	Referer string
	Title   string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (OpenRouter)
func DefaultConfig() *Config {
	return DefaultOpenRouterConfig()
}

// DefaultOpenRouterConfig returns the sampling setup used for resume optimization.
func DefaultOpenRouterConfig() *Config {
	return &Config{
		Provider: ProviderOpenRouter,
		Models: map[ModelTier]string{
			TierLite:     DefaultOpenRouterModel,
			TierStandard: DefaultOpenRouterModel,
			TierAdvanced: "deepseek/deepseek-chat-v3-0324",
		},
		Temperature:      0.2,
		MaxTokens:        6000,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
		BaseURL:          DefaultOpenRouterBaseURL,
		Referer:          DefaultReferer,
		Title:            DefaultTitle,
		Timeout:          DefaultTimeout,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.2,
		MaxTokens:   6000,
		TopP:        0.9,
		Timeout:     DefaultTimeout,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// ParseProvider maps a configuration string to a Provider, defaulting to OpenRouter.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case "", ProviderOpenRouter:
		return ProviderOpenRouter, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}
