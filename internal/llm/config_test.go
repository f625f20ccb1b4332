package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenRouter, config.Provider)
	assert.Equal(t, DefaultOpenRouterModel, config.GetModel(TierStandard))
	assert.Equal(t, DefaultOpenRouterBaseURL, config.BaseURL)
	assert.InDelta(t, 0.2, config.Temperature, 1e-9)
	assert.Equal(t, 6000, config.MaxTokens)
	assert.Equal(t, DefaultTitle, config.Title)
}

func TestDefaultGeminiConfig(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderOpenRouter,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Models: map[ModelTier]string{}}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierStandard, "openai/gpt-4o-mini")

	// Original should be unchanged
	assert.Equal(t, DefaultOpenRouterModel, config.GetModel(TierStandard))
	assert.Equal(t, "openai/gpt-4o-mini", newConfig.GetModel(TierStandard))

	// Sampling parameters are copied
	assert.Equal(t, config.MaxTokens, newConfig.MaxTokens)
	assert.Equal(t, config.BaseURL, newConfig.BaseURL)
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider("")
	assert.True(t, ok)
	assert.Equal(t, ProviderOpenRouter, p)

	p, ok = ParseProvider("gemini")
	assert.True(t, ok)
	assert.Equal(t, ProviderGemini, p)

	_, ok = ParseProvider("anthropic")
	assert.False(t, ok)
}
