//go:build cgo

package embeddings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
)

// modelMapping translates HuggingFace model names to fastembed identifiers.
var modelMapping = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"BAAI/bge-small-zh-v1.5":                 fastembed.BGESmallZH,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
}

// fastembedDimensions lists the models this provider supports and their
// embedding sizes.
var fastembedDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.BGESmallENV15: 384,
	fastembed.BGEBaseENV15:  768,
	fastembed.BGESmallZH:    512,
	fastembed.AllMiniLML6V2: 384,
}

// resolveFastEmbedModel accepts either a HuggingFace name or a raw fastembed
// identifier and returns the identifier plus its dimension.
func resolveFastEmbedModel(name string) (fastembed.EmbeddingModel, int, error) {
	if name == "" {
		name = DefaultModel
	}
	model, ok := modelMapping[name]
	if !ok {
		model = fastembed.EmbeddingModel(name)
	}
	dim, ok := fastembedDimensions[model]
	if !ok {
		return "", 0, fmt.Errorf("%w: unsupported fastembed model %q", ErrInvalidConfig, name)
	}
	return model, dim, nil
}

// fastEmbedProvider embeds locally through ONNX Runtime. The first use of a
// model downloads it into the cache directory; inference afterwards needs no
// network.
type fastEmbedProvider struct {
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int

	mu sync.RWMutex
}

func newFastEmbedProvider(cfg Config) (*fastEmbedProvider, error) {
	model, dim, err := resolveFastEmbedModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir()
	}
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = 512
	}

	fe, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &cfg.ShowProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: initializing fastembed model %q: %v", ErrEmbeddingFailed, cfg.Model, err)
	}

	return &fastEmbedProvider{model: fe, modelName: cfg.Model, dimension: dim}, nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "local_cache"
	}
	return filepath.Join(home, ".config", "tokenpress", "models", "fastembed")
}

func (p *fastEmbedProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return nil, fmt.Errorf("%w: provider is closed", ErrEmbeddingFailed)
	}

	vectors, err := p.model.PassageEmbed(texts, 256)
	if err != nil {
		return nil, fmt.Errorf("%w: passage embedding: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

func (p *fastEmbedProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return nil, fmt.Errorf("%w: provider is closed", ErrEmbeddingFailed)
	}

	vector, err := p.model.QueryEmbed(text)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding: %v", ErrEmbeddingFailed, err)
	}
	return vector, nil
}

func (p *fastEmbedProvider) Dimension() int {
	return p.dimension
}

func (p *fastEmbedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model != nil {
		p.model.Destroy()
		p.model = nil
	}
	return nil
}
