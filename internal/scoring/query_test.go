package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns canned vectors keyed by input text.
type stubEmbedder struct {
	queryVec []float32
	docVecs  map[string][]float32
	queryErr error
	docErr   error
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryVec, nil
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if s.docErr != nil {
		return nil, s.docErr
	}
	out := make([][]float32, len(texts))
	for i, txt := range texts {
		v, ok := s.docVecs[txt]
		if !ok {
			v = []float32{1, 1}
		}
		out[i] = v
	}
	return out, nil
}

func TestQueryRelevance_SentenceSpans(t *testing.T) {
	emb := &stubEmbedder{
		queryVec: []float32{1, 0},
		docVecs: map[string][]float32{
			"alpha beta.":  {1, 0}, // similarity 1
			"gamma delta.": {0, 1}, // similarity 0
		},
	}
	tokens := []string{"alpha", "beta", ".", "gamma", "delta", "."}

	got, err := QueryRelevance(context.Background(), emb, tokens, "alpha beta. gamma delta.", "find alpha")
	require.NoError(t, err)
	require.Len(t, got, 6)

	// First sentence covers two tokens, second the next three, and the
	// trailing period gets the mean sentence similarity.
	assert.InDelta(t, 1.0, float64(got[0]), 1e-6)
	assert.InDelta(t, 1.0, float64(got[1]), 1e-6)
	assert.InDelta(t, 0.0, float64(got[2]), 1e-6)
	assert.InDelta(t, 0.0, float64(got[3]), 1e-6)
	assert.InDelta(t, 0.0, float64(got[4]), 1e-6)
	assert.InDelta(t, 0.5, float64(got[5]), 1e-6)
}

func TestQueryRelevance_SubstringTokensCounted(t *testing.T) {
	// "the" is a substring of the reconstruction after "theory", so it is
	// consumed without extending the walk.
	emb := &stubEmbedder{
		queryVec: []float32{1, 0},
		docVecs: map[string][]float32{
			"theory the end.": {1, 0},
		},
	}
	tokens := []string{"theory", "the", "end"}

	got, err := QueryRelevance(context.Background(), emb, tokens, "theory the end.", "q")
	require.NoError(t, err)
	for i := range got {
		assert.InDelta(t, 1.0, float64(got[i]), 1e-6, "index %d", i)
	}
}

func TestQueryRelevance_ContinuationTokens(t *testing.T) {
	emb := &stubEmbedder{
		queryVec: []float32{1, 0},
		docVecs: map[string][]float32{
			"playing games.": {1, 0},
		},
	}
	tokens := []string{"play", "##ing", "games", "."}

	got, err := QueryRelevance(context.Background(), emb, tokens, "playing games.", "q")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.InDelta(t, 1.0, float64(got[0]), 1e-6)
	assert.InDelta(t, 1.0, float64(got[1]), 1e-6)
}

func TestQueryRelevance_EmbedErrors(t *testing.T) {
	tokens := []string{"a", "b"}

	_, err := QueryRelevance(context.Background(), &stubEmbedder{queryErr: errors.New("boom")}, tokens, "a b.", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")

	_, err = QueryRelevance(context.Background(), &stubEmbedder{queryVec: []float32{1}, docErr: errors.New("boom")}, tokens, "a b.", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed sentences")
}

func TestQueryRelevance_NoTokens(t *testing.T) {
	emb := &stubEmbedder{queryVec: []float32{1, 0}}
	got, err := QueryRelevance(context.Background(), emb, nil, "some text.", "q")
	require.NoError(t, err)
	assert.Empty(t, got)
}
