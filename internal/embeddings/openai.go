package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

// openaiProvider embeds through an OpenAI-compatible /v1/embeddings endpoint
// via langchaingo. Works against OpenAI itself and self-hosted compatible
// servers such as Ollama, vLLM, and LocalAI.
type openaiProvider struct {
	embedder  *embeddings.EmbedderImpl
	model     string
	dimension int
	metrics   *Metrics
}

func newOpenAIProvider(cfg Config, logger *logging.Logger) (*openaiProvider, error) {
	token := cfg.APIKey.Value()
	if token == "" {
		// The client refuses to construct without a token even though
		// self-hosted endpoints ignore it.
		token = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(token),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &openaiProvider{
		embedder:  embedder,
		model:     cfg.Model,
		dimension: detectDimension(cfg.Model),
		metrics:   NewMetrics(logger),
	}, nil
}

func (p *openaiProvider) EmbedDocuments(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	defer func() {
		p.metrics.RecordGeneration(ctx, p.model, "embed_documents", time.Since(start), len(texts), err)
	}()

	vectors, err = p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

func (p *openaiProvider) EmbedQuery(ctx context.Context, text string) (vector []float32, err error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	defer func() {
		p.metrics.RecordGeneration(ctx, p.model, "embed_query", time.Since(start), 1, err)
	}()

	vector, err = p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return vector, nil
}

func (p *openaiProvider) Dimension() int {
	return p.dimension
}

func (p *openaiProvider) Close() error {
	return nil
}
