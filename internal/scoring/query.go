package scoring

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Embedder provides the sentence embeddings used for query relevance.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// QueryRelevance scores each token by how similar its sentence is to the
// query. The query is embedded once and all sentences in one batch; a
// greedy walk then maps each sentence's similarity onto the span of encoder
// tokens it covers. Tokens past the last mapped span receive the mean
// sentence similarity. The result is unnormalized.
//
// The walk is heuristic: a token whose ##-stripped lowercase form is
// already a substring of the running reconstruction, or is shorter than
// two runes, is counted without extending the reconstruction; the walk
// stops once the reconstruction reaches the sentence's word count.
func QueryRelevance(ctx context.Context, emb Embedder, tokens []string, text, query string) ([]float32, error) {
	scores := make([]float32, len(tokens))

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		for i := range scores {
			scores[i] = 0.5
		}
		return scores, nil
	}

	queryEmb, err := emb.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	sentEmbs, err := emb.EmbedDocuments(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(sentEmbs) != len(sentences) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d sentences", len(sentEmbs), len(sentences))
	}

	sentScores := make([]float32, len(sentences))
	var sum float64
	for i, se := range sentEmbs {
		sentScores[i] = float32(Cosine(queryEmb, se))
		sum += float64(sentScores[i])
	}
	meanScore := float32(sum / float64(len(sentScores)))

	tokenIdx := 0
	for sentIdx, sent := range sentences {
		sentWords := len(strings.Fields(sent))

		counted := 0
		reconstructed := ""
		for _, tok := range tokens[tokenIdx:] {
			clean := strings.ToLower(strings.ReplaceAll(tok, "##", ""))
			if strings.Contains(reconstructed, clean) || utf8.RuneCountInString(clean) < 2 {
				counted++
				continue
			}
			reconstructed += " " + tok
			counted++
			if len(strings.Fields(reconstructed)) >= sentWords {
				break
			}
		}

		end := min(tokenIdx+max(counted, 1), len(scores))
		for i := tokenIdx; i < end; i++ {
			scores[i] = sentScores[sentIdx]
		}
		tokenIdx = end

		if tokenIdx >= len(scores) {
			break
		}
	}

	for i := tokenIdx; i < len(scores); i++ {
		scores[i] = meanScore
	}
	return scores, nil
}
