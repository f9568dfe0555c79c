package compressor

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
)

// scoredTokens builds a token slice from parallel score/special values.
func scoredTokens(scores []float32, special []bool) []scoring.Token {
	tokens := make([]scoring.Token, len(scores))
	for i := range tokens {
		tokens[i] = scoring.Token{
			Text:     "t",
			Position: i,
			Score:    scores[i],
			Special:  special[i],
		}
	}
	return tokens
}

func TestSelectTokens_SpecialsExcluded(t *testing.T) {
	tokens := scoredTokens(
		[]float32{0, 0.9, 0.1, 0.8, 0},
		[]bool{true, false, false, false, true},
	)

	kept, _, passthrough := selectTokens(tokens, 0.67, 0, 0)
	require.False(t, passthrough)
	// 3 content tokens, budget int(3*0.67) = 2.
	assert.Equal(t, []int{1, 3}, kept)
	assert.False(t, tokens[0].Kept)
	assert.False(t, tokens[4].Kept)
	assert.True(t, tokens[1].Kept)
}

func TestSelectTokens_Passthrough(t *testing.T) {
	tokens := scoredTokens(
		[]float32{0, 0.2, 0.4, 0},
		[]bool{true, false, false, true},
	)

	kept, threshold, passthrough := selectTokens(tokens, 0.5, 0, 50)
	assert.True(t, passthrough)
	assert.Zero(t, threshold)
	assert.Equal(t, []int{1, 2}, kept)
	assert.True(t, tokens[1].Kept)
	assert.True(t, tokens[2].Kept)
}

func TestSelectTokens_MinTokensFloor(t *testing.T) {
	scores := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	tokens := scoredTokens(scores, make([]bool, len(scores)))

	// int(10*0.1) = 1, floored to 4 by minTokens.
	kept, _, passthrough := selectTokens(tokens, 0.1, 0, 4)
	require.False(t, passthrough)
	assert.Equal(t, []int{6, 7, 8, 9}, kept)
}

func TestSelectTokens_TiesKeepExtra(t *testing.T) {
	scores := []float32{0.3, 0.3, 0.2, 0.2, 0.1, 0.1}
	tokens := scoredTokens(scores, make([]bool, len(scores)))

	// Budget 3, third-largest score is 0.2; both 0.2 tokens survive.
	kept, threshold, passthrough := selectTokens(tokens, 0.5, 0, 0)
	require.False(t, passthrough)
	assert.InDelta(t, 0.2, threshold, 1e-6)
	assert.Equal(t, []int{0, 1, 2, 3}, kept)
}

func TestSelectTokens_HardThresholdFloor(t *testing.T) {
	scores := []float32{0.1, 0.5, 0.95, 0.2}
	tokens := scoredTokens(scores, make([]bool, len(scores)))

	kept, threshold, passthrough := selectTokens(tokens, 0.75, 0.9, 0)
	require.False(t, passthrough)
	assert.InDelta(t, 0.9, threshold, 1e-6)
	assert.Equal(t, []int{2}, kept)
}

func TestSelectTokens_BudgetNeverZero(t *testing.T) {
	scores := []float32{0.4, 0.9, 0.1, 0.5, 0.2}
	tokens := scoredTokens(scores, make([]bool, len(scores)))

	// int(5*0.1) = 0; at least one token must survive.
	kept, _, passthrough := selectTokens(tokens, 0.1, 0, 0)
	require.False(t, passthrough)
	assert.Equal(t, []int{1}, kept)
}

func TestSelectTokens_IndicesAscending(t *testing.T) {
	scores := []float32{0.9, 0.1, 0.8, 0.2, 0.7, 0.3}
	tokens := scoredTokens(scores, make([]bool, len(scores)))

	kept, _, _ := selectTokens(tokens, 0.5, 0, 0)
	assert.True(t, sort.IntsAreSorted(kept))
	for i := 1; i < len(kept); i++ {
		assert.Greater(t, kept[i], kept[i-1])
	}
}
