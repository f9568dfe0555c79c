package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

// newOpenAITestServer fakes an OpenAI-compatible /embeddings endpoint.
func newOpenAITestServer(t *testing.T, lastAuth *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		*lastAuth = r.Header.Get("Authorization")

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Object string `json:"object"`
			Data   []item `json:"data"`
			Model  string `json:"model"`
		}{Object: "list", Model: req.Model}
		for i := range req.Input {
			resp.Data = append(resp.Data, item{
				Object:    "embedding",
				Embedding: []float32{float32(i), 0.5},
				Index:     i,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAIProvider_EmbedDocuments(t *testing.T) {
	var auth string
	srv := newOpenAITestServer(t, &auth)
	defer srv.Close()

	p, err := New(Config{
		Provider: ProviderOpenAI,
		BaseURL:  srv.URL,
		Model:    "text-embedding-3-small",
		APIKey:   logging.Secret("test-key"),
	}, logging.NewNop())
	require.NoError(t, err)
	defer p.Close()

	vectors, err := p.EmbedDocuments(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(0.5), vectors[0][1])
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, 1536, p.Dimension())
}

func TestOpenAIProvider_EmbedQuery(t *testing.T) {
	var auth string
	srv := newOpenAITestServer(t, &auth)
	defer srv.Close()

	p, err := New(Config{
		Provider: ProviderOpenAI,
		BaseURL:  srv.URL,
		Model:    "text-embedding-3-small",
	}, nil)
	require.NoError(t, err)
	defer p.Close()

	vector, err := p.EmbedQuery(context.Background(), "what changed?")
	require.NoError(t, err)
	require.Len(t, vector, 2)
	// Keyless config falls back to a placeholder token.
	assert.Equal(t, "Bearer placeholder", auth)
}

func TestOpenAIProvider_EmptyInput(t *testing.T) {
	p, err := New(Config{
		Provider: ProviderOpenAI,
		BaseURL:  "http://localhost:9",
		Model:    "text-embedding-3-small",
	}, nil)
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, err := New(Config{
		Provider: ProviderOpenAI,
		BaseURL:  srv.URL,
		Model:    "text-embedding-3-small",
	}, nil)
	require.NoError(t, err)

	_, err = p.EmbedDocuments(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}
