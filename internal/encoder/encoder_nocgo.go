//go:build !cgo

// Package encoder adapts a local ONNX transformer encoder: WordPiece
// tokenization plus forward passes that expose per-token embeddings and
// per-layer attention weights.
package encoder

import (
	"context"
	"errors"
	"fmt"
)

// ErrCGORequired is returned when the binary was built without CGO, which
// the ONNX runtime binding needs.
var ErrCGORequired = errors.New("encoder requires a CGO-enabled build")

// Encoder is a stub for non-CGO builds.
type Encoder struct{}

// New returns an error: local inference needs CGO.
func New(_ Config) (*Encoder, error) {
	return nil, fmt.Errorf("%w: %v", ErrModelLoad, ErrCGORequired)
}

// ShutdownRuntime is a no-op without CGO.
func ShutdownRuntime() error {
	return nil
}

// Encode returns an error: local inference needs CGO.
func (e *Encoder) Encode(_ string) (*Encoding, error) {
	return nil, fmt.Errorf("%w: %v", ErrInference, ErrCGORequired)
}

// Forward returns an error: local inference needs CGO.
func (e *Encoder) Forward(_ context.Context, _ *Encoding) (*Output, error) {
	return nil, fmt.Errorf("%w: %v", ErrInference, ErrCGORequired)
}

// Close is a no-op without CGO.
func (e *Encoder) Close() error {
	return nil
}
