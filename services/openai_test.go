package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletionServer(t *testing.T, status int, body any, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIServiceComplete(t *testing.T) {
	var seen map[string]any
	srv := newCompletionServer(t, http.StatusOK, map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-3.5-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": "  墾丁很適合夏天去！ "},
		}},
	}, &seen)

	svc := NewOpenAIService(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	reply, err := svc.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: "system"},
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
			{Role: models.RoleUser, Content: "墾丁?"},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	require.NoError(t, err)
	// Content is returned as sent so the stored assistant turn matches it.
	assert.Equal(t, "  墾丁很適合夏天去！ ", reply)

	assert.Equal(t, "gpt-3.5-turbo", seen["model"])
	assert.InDelta(t, 0.7, seen["temperature"], 1e-9)
	assert.EqualValues(t, 300, seen["max_tokens"])
	msgs, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
}

func TestOpenAIServiceNoChoices(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, map[string]any{"id": "x", "choices": []any{}}, nil)

	svc := NewOpenAIService(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	reply, err := svc.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestOpenAIServiceMapsAPIErrors(t *testing.T) {
	srv := newCompletionServer(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{
			"message": "Incorrect API key provided",
			"type":    "invalid_request_error",
			"code":    "invalid_api_key",
		},
	}, nil)

	svc := NewOpenAIService(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := svc.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "invalid_api_key")
}
