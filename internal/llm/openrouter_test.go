package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultOpenRouterConfig()
	cfg.BaseURL = srv.URL
	client, err := NewOpenRouterClient(cfg, "sk-test")
	require.NoError(t, err)
	return client
}

func TestNewOpenRouterClient_MissingKey(t *testing.T) {
	_, err := NewOpenRouterClient(nil, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenRouter_GenerateContent_Success(t *testing.T) {
	var got chatRequest
	client := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultTitle, r.Header.Get("X-Title"))
		assert.Equal(t, DefaultReferer, r.Header.Get("HTTP-Referer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"deepseek","choices":[{"message":{"role":"assistant","content":"{\"atsScore\": 90}"}}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`))
	})

	text, err := client.GenerateContent(context.Background(), Prompt{System: "sys", User: "hello"}, TierStandard)
	require.NoError(t, err)
	assert.Equal(t, `{"atsScore": 90}`, text)

	assert.Equal(t, DefaultOpenRouterModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
	assert.Equal(t, 6000, got.MaxTokens)
}

func TestOpenRouter_GenerateContent_NoSystemMessage(t *testing.T) {
	var got chatRequest
	client := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := client.GenerateContent(context.Background(), Prompt{User: "hello"}, TierStandard)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestOpenRouter_GenerateContent_HTTPError(t *testing.T) {
	client := newTestOpenRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
	})

	_, err := client.GenerateContent(context.Background(), Prompt{User: "hello"}, TierStandard)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "No auth credentials found", upstream.Message)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenRouter_GenerateContent_ErrorInOKBody(t *testing.T) {
	client := newTestOpenRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"Provider returned error","code":502}}`))
	})

	_, err := client.GenerateContent(context.Background(), Prompt{User: "hello"}, TierStandard)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 502, upstream.StatusCode)
}

func TestOpenRouter_GenerateContent_EmptyChoices(t *testing.T) {
	client := newTestOpenRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.GenerateContent(context.Background(), Prompt{User: "hello"}, TierStandard)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenRouter_GenerateContent_BlankContentIsReturned(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty", body: `{"choices":[{"message":{"role":"assistant","content":""}}]}`, want: ""},
		{name: "whitespace", body: `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`, want: "   "},
		{name: "null", body: `{"choices":[{"message":{"role":"assistant","content":null}}]}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestOpenRouter(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.GenerateContent(context.Background(), Prompt{User: "hello"}, TierStandard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenRouter_GenerateContent_NoModel(t *testing.T) {
	client, err := NewOpenRouterClient(&Config{Models: map[ModelTier]string{}}, "sk-test")
	require.NoError(t, err)

	_, err = client.GenerateContent(context.Background(), Prompt{User: "hello"}, TierStandard)
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "anthropic"}, "key")
	assert.Error(t, err)
}

func TestNewClient_DefaultsToOpenRouter(t *testing.T) {
	client, err := NewClient(context.Background(), nil, "key")
	require.NoError(t, err)
	_, ok := client.(*OpenRouterClient)
	assert.True(t, ok)
	assert.NoError(t, client.Close())
}
