package llm

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	TopP             float64       `json:"top_p,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
}

// OpenRouterClient implements Client for the OpenRouter chat completions API
type OpenRouterClient struct {
	http   *resty.Client
	config *Config
}

// NewOpenRouterClient creates a new OpenRouter client
func NewOpenRouterClient(config *Config, apiKey string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config == nil {
		config = DefaultOpenRouterConfig()
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	if config.Referer != "" {
		httpClient.SetHeader("HTTP-Referer", config.Referer)
	}
	if config.Title != "" {
		httpClient.SetHeader("X-Title", config.Title)
	}

	return &OpenRouterClient{http: httpClient, config: config}, nil
}

// GenerateContent sends one chat completion and returns the first choice's text
func (c *OpenRouterClient) GenerateContent(ctx context.Context, prompt Prompt, tier ModelTier) (string, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return "", &UpstreamError{Provider: ProviderOpenRouter, Message: "no model configured for tier " + string(tier)}
	}

	messages := make([]chatMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt.User})

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:            model,
			Messages:         messages,
			Temperature:      c.config.Temperature,
			MaxTokens:        c.config.MaxTokens,
			TopP:             c.config.TopP,
			FrequencyPenalty: c.config.FrequencyPenalty,
			PresencePenalty:  c.config.PresencePenalty,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", &UpstreamError{Provider: ProviderOpenRouter, Cause: err}
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return "", &UpstreamError{
			Provider:   ProviderOpenRouter,
			StatusCode: resp.StatusCode(),
			Message:    gjson.GetBytes(body, "error.message").String(),
		}
	}

	// OpenRouter reports some provider failures inside a 200 body.
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return "", &UpstreamError{
			Provider:   ProviderOpenRouter,
			StatusCode: int(gjson.GetBytes(body, "error.code").Int()),
			Message:    msg.String(),
		}
	}

	slog.DebugContext(ctx, "LLM API call",
		"provider", ProviderOpenRouter,
		"model", gjson.GetBytes(body, "model").String(),
		"input_tokens", gjson.GetBytes(body, "usage.prompt_tokens").Int(),
		"output_tokens", gjson.GetBytes(body, "usage.completion_tokens").Int())

	message := gjson.GetBytes(body, "choices.0.message")
	if !message.Exists() {
		return "", &UpstreamError{Provider: ProviderOpenRouter, Cause: ErrEmptyResponse}
	}
	// Empty or null content is a reply too; the caller decides how to present it.
	return message.Get("content").String(), nil
}

// GetModel returns the model name for a tier
func (c *OpenRouterClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no long-lived resources.
func (c *OpenRouterClient) Close() error {
	return nil
}
