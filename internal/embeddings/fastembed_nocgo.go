//go:build !cgo

package embeddings

import "fmt"

// newFastEmbedProvider reports that local embedding is unavailable. The
// fastembed backend links ONNX Runtime and needs a cgo-enabled build; remote
// providers remain usable.
func newFastEmbedProvider(cfg Config) (Provider, error) {
	return nil, fmt.Errorf("%w: fastembed provider requires a cgo-enabled build; use the openai or tei provider instead", ErrInvalidConfig)
}
