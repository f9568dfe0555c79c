package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

// fastClientConfig keeps retry and rate-limit delays out of test runtime.
func fastClientConfig(baseURL string) ClientConfig {
	cfg := NewDefaultClientConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = logging.Secret("test-key")
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RequestsPerMinute = 60000
	cfg.Burst = 100
	return cfg
}

func chatCompletionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id": "chatcmpl-test",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultChatModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "What is 2+2?", req.Messages[0].Content)
		assert.Equal(t, answerMaxTokens, req.MaxTokens)
		assert.Zero(t, req.Temperature)

		w.Write(chatCompletionBody(t, "  (A)  "))
	}))
	defer srv.Close()

	client, err := NewClient(fastClientConfig(srv.URL))
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "(A)", got)
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(chatCompletionBody(t, "B"))
	}))
	defer srv.Close()

	client, err := NewClient(fastClientConfig(srv.URL))
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "B", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Write(chatCompletionBody(t, "C"))
	}))
	defer srv.Close()

	client, err := NewClient(fastClientConfig(srv.URL))
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "C", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(fastClientConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := fastClientConfig(srv.URL)
	cfg.MaxRetries = 1
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NoChoices(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"id":"chatcmpl-test","choices":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient(fastClientConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoChoices)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_NoAPIKeySkipsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write(chatCompletionBody(t, "D"))
	}))
	defer srv.Close()

	cfg := fastClientConfig(srv.URL)
	cfg.APIKey = ""
	client, err := NewClient(cfg)
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "D", got)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := fastClientConfig(srv.URL)
	cfg.RetryBaseDelay = time.Minute
	client, err := NewClient(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Complete(ctx, "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *ClientConfig) {}},
		{name: "missing base url", mutate: func(c *ClientConfig) { c.BaseURL = "" }, wantErr: true},
		{name: "negative retries", mutate: func(c *ClientConfig) { c.MaxRetries = -1 }, wantErr: true},
		{name: "negative rate", mutate: func(c *ClientConfig) { c.RequestsPerMinute = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultClientConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
