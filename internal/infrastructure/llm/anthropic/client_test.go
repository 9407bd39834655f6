package anthropic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/resilience"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient(config.LLMConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")

	client, err := NewClient(config.LLMConfig{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/"+DefaultModel, client.Name())
	assert.Equal(t, int64(DefaultMaxTokens), client.maxTokens)

	client, err = NewClient(config.LLMConfig{APIKey: "test-key", Model: "claude-haiku-4-5", MaxTokens: 300})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-haiku-4-5", client.Name())
	assert.Equal(t, int64(300), client.maxTokens)
}

func TestClient_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Jane Doe made "},
				{"type": "text", "text": "three deposits."},
			},
			"model":       "claude-sonnet-4-5",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer ts.Close()

	client, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})
	require.NoError(t, err)

	text, err := client.Generate(t.Context(), "Draft.")

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe made three deposits.", text)
}

func TestClient_Generate_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "overloaded is transient", status: http.StatusServiceUnavailable, wantTransient: true},
		{name: "rate limited is transient", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "bad request is permanent", status: http.StatusBadRequest, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": "failure"},
				})
			}))
			defer ts.Close()

			client, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})
			require.NoError(t, err)

			_, err = client.Generate(t.Context(), "Draft.")

			require.Error(t, err)
			assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}
