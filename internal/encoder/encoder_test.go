//go:build cgo

package encoder

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingModel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ModelDir = t.TempDir() // exists but holds no model files

	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelLoad)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.NumLayers = 0

	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelLoad)
}

// newTestEncoder loads the real model when TOKENPRESS_TEST_MODEL_DIR points
// at a directory holding model.onnx and tokenizer.json; otherwise skips.
func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	dir := os.Getenv("TOKENPRESS_TEST_MODEL_DIR")
	if dir == "" {
		t.Skip("TOKENPRESS_TEST_MODEL_DIR not set")
	}
	cfg := NewDefaultConfig()
	cfg.ModelDir = dir
	enc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { enc.Close() })
	return enc
}

func TestEncoder_RoundTrip(t *testing.T) {
	enc := newTestEncoder(t)

	encoding, err := enc.Encode("The quick brown fox jumps over the lazy dog.")
	require.NoError(t, err)
	require.Greater(t, encoding.Len(), 2)

	// [CLS] ... [SEP] framing
	assert.True(t, encoding.Special[0])
	assert.True(t, encoding.Special[encoding.Len()-1])

	out, err := enc.Forward(context.Background(), encoding)
	require.NoError(t, err)
	require.Len(t, out.Embeddings, encoding.Len())
	require.Len(t, out.Embeddings[0], DefaultHiddenSize)
	require.Len(t, out.Attentions, DefaultNumLayers)
	require.Len(t, out.Attentions[0], DefaultNumHeads)
	require.Len(t, out.Attentions[0][0], encoding.Len())
}

func TestEncoder_ForwardAfterClose(t *testing.T) {
	enc := newTestEncoder(t)

	encoding, err := enc.Encode("hello")
	require.NoError(t, err)

	require.NoError(t, enc.Close())
	_, err = enc.Forward(context.Background(), encoding)
	assert.ErrorIs(t, err, ErrInference)
}
