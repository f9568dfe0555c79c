package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerWeights(t *testing.T) {
	t.Run("linear ramps from 0.3 to 1.0", func(t *testing.T) {
		w := layerWeights(LayerWeightingLinear, 6)
		require.Len(t, w, 6)
		assert.InDelta(t, 0.3, w[0], 1e-9)
		assert.InDelta(t, 1.0, w[5], 1e-9)
		for i := 1; i < len(w); i++ {
			assert.Greater(t, w[i], w[i-1])
		}
	})

	t.Run("exponential ramps from 1/e to 1", func(t *testing.T) {
		w := layerWeights(LayerWeightingExponential, 4)
		require.Len(t, w, 4)
		assert.InDelta(t, math.Exp(-1), w[0], 1e-9)
		assert.InDelta(t, 1.0, w[3], 1e-9)
		for i := 1; i < len(w); i++ {
			assert.Greater(t, w[i], w[i-1])
		}
	})

	t.Run("last-only zeroes all but the final layer", func(t *testing.T) {
		w := layerWeights(LayerWeightingLastOnly, 3)
		assert.Equal(t, []float64{0, 0, 1}, w)
	})

	t.Run("single layer", func(t *testing.T) {
		assert.InDelta(t, 0.3, layerWeights(LayerWeightingLinear, 1)[0], 1e-9)
		assert.Equal(t, []float64{1}, layerWeights(LayerWeightingLastOnly, 1))
	})
}

func TestAttentionImportance_ReceivedAttention(t *testing.T) {
	// One layer, one head, three tokens. Rows are attention emitted by a
	// position; a token's raw score is the sum of its column.
	attn := [][][][]float32{{{
		{0.1, 0.7, 0.2},
		{0.3, 0.3, 0.4},
		{0.5, 0.2, 0.3},
	}}}

	got := AttentionImportance(attn, LayerWeightingLastOnly)
	require.Len(t, got, 3)
	assert.InDelta(t, 0.9, float64(got[0]), 1e-6)
	assert.InDelta(t, 1.2, float64(got[1]), 1e-6)
	assert.InDelta(t, 0.9, float64(got[2]), 1e-6)
}

func TestAttentionImportance_LayerWeighting(t *testing.T) {
	// Layer 0 sends everything to token 0; layer 1 sends everything to
	// token 1. Two-layer linear weights are 0.3 and 1.0.
	toFirst := [][][]float32{{{1, 0}, {1, 0}}}
	toSecond := [][][]float32{{{0, 1}, {0, 1}}}
	attn := [][][][]float32{toFirst, toSecond}

	t.Run("linear favors later layers", func(t *testing.T) {
		got := AttentionImportance(attn, LayerWeightingLinear)
		require.Len(t, got, 2)
		assert.InDelta(t, 0.3, float64(got[0]), 1e-6) // 0.3*2 / (2 layers * 1 head)
		assert.InDelta(t, 1.0, float64(got[1]), 1e-6) // 1.0*2 / 2
	})

	t.Run("last-only ignores earlier layers", func(t *testing.T) {
		got := AttentionImportance(attn, LayerWeightingLastOnly)
		require.Len(t, got, 2)
		assert.InDelta(t, 0.0, float64(got[0]), 1e-6)
		assert.InDelta(t, 1.0, float64(got[1]), 1e-6)
	})
}

func TestAttentionImportance_Empty(t *testing.T) {
	assert.Nil(t, AttentionImportance(nil, LayerWeightingLinear))
	assert.Nil(t, AttentionImportance([][][][]float32{}, LayerWeightingLinear))
}
