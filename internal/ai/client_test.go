package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientComplete(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "model reply"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-3.5-turbo", zap.NewNop())
	reply, err := c.Complete(context.Background(), "hello", Options{
		SystemContext: "be terse",
		Temperature:   0.3,
		MaxTokens:     300,
	})
	require.NoError(t, err)
	assert.Equal(t, "model reply", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "be terse", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestClientCompleteWithoutSystemContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", zap.NewNop())
	_, err := c.Complete(context.Background(), "hello", Options{})
	require.NoError(t, err)
}

func TestClientCompleteNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", zap.NewNop())
	_, err := c.Complete(context.Background(), "hello", Options{})
	require.Error(t, err)
	var serviceErr *ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestClientCompleteErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded", "type": "server_error"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", zap.NewNop())
	_, err := c.Complete(context.Background(), "hello", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestClientCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", zap.NewNop())
	_, err := c.Complete(context.Background(), "hello", Options{})
	assert.Error(t, err)
}
