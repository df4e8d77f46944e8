package classification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	oaioption "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-triage/internal/config"
)

func anthropicServer(t *testing.T, text string, captured *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_test",
			"type":  "message",
			"role":  "assistant",
			"model": "test-model",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAnthropicProviderComplete(t *testing.T) {
	var captured map[string]any
	server := anthropicServer(t, `{"category":"billing","priority":"high"}`, &captured)

	cfg := testConfig()
	cfg.BaseURL = server.URL
	provider := NewAnthropicProvider(cfg, option.WithMaxRetries(0))

	reply, err := provider.Complete(context.Background(), CompletionRequest{
		System:    "sys",
		Prompt:    "classify this",
		MaxTokens: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"category":"billing","priority":"high"}`, reply)

	assert.Equal(t, "test-model", captured["model"])
	assert.EqualValues(t, 50, captured["max_tokens"])
	assert.EqualValues(t, 0, captured["temperature"])
}

func TestGatewayWithAnthropicProvider(t *testing.T) {
	server := anthropicServer(t, "```json\n{\"category\": \"account\", \"priority\": \"medium\"}\n```", nil)

	cfg := testConfig()
	cfg.BaseURL = server.URL
	gw := NewGateway(cfg, NewAnthropicProvider(cfg, option.WithMaxRetries(0)))

	got := gw.Classify(context.Background(), "cannot reset my password")
	assertResult(t, got, "account", "medium")
}

func TestAnthropicProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.BaseURL = server.URL
	gw := NewGateway(cfg, NewAnthropicProvider(cfg, option.WithMaxRetries(0)))

	got := gw.Classify(context.Background(), "anything")
	assert.True(t, got.Empty())
}

func TestOpenAIProviderComplete(t *testing.T) {
	var captured map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"category\":\"technical\",\"priority\":\"low\"}"}
			}]
		}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Provider = config.ProviderOpenAI
	cfg.Model = ""
	cfg.BaseURL = server.URL
	provider := NewOpenAIProvider(cfg, oaioption.WithMaxRetries(0))

	reply, err := provider.Complete(context.Background(), CompletionRequest{
		System:    "sys",
		Prompt:    "classify",
		MaxTokens: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"category":"technical","priority":"low"}`, reply)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, DefaultOpenAIModel, captured["model"])
	assert.EqualValues(t, 50, captured["max_tokens"])
	assert.EqualValues(t, 0, captured["temperature"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAIProviderErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`},
		{"bad status without body", http.StatusBadGateway, `{}`},
		{"no choices", http.StatusOK, `{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			cfg := testConfig()
			cfg.Provider = config.ProviderOpenAI
			cfg.BaseURL = server.URL
			provider := NewOpenAIProvider(cfg, oaioption.WithMaxRetries(0))
			_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
			assert.Error(t, err)
		})
	}
}

func TestGatewayWithOpenAIProviderFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Provider = config.ProviderOpenAI
	cfg.BaseURL = server.URL
	gw := NewGateway(cfg, NewOpenAIProvider(cfg, oaioption.WithMaxRetries(0)))

	assert.True(t, gw.Classify(context.Background(), "anything").Empty())
}

func TestNewProviderSelection(t *testing.T) {
	cfg := testConfig()

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &AnthropicProvider{}, p)

	cfg.Provider = config.ProviderOpenAI
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	cfg.Provider = "mystery"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}
