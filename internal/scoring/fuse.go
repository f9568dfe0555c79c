package scoring

import "strings"

// Weights holds the fusion weights for the three importance signals.
// Within any single fusion the effective weights sum to 1.
type Weights struct {
	Attention float64
	Semantic  float64
	Query     float64
}

// Fuse min-max normalizes each signal and combines them into one score per
// token. The effective weights are renormalized to sum to 1 over the signals
// actually present: a nil query signal drops the query term entirely, so a
// query-less run is identical whatever the configured query weight, and
// scaling all weights by a constant never changes the fused scores.
func Fuse(attention, semantic, query []float32, w Weights) []float32 {
	attn := Normalize(attention)
	sem := Normalize(semantic)
	out := make([]float32, len(attn))

	if query == nil {
		total := w.Attention + w.Semantic
		wa := w.Attention / total
		ws := w.Semantic / total
		for i := range out {
			out[i] = float32(wa*float64(attn[i]) + ws*float64(sem[i]))
		}
		return out
	}

	q := Normalize(query)
	total := w.Attention + w.Semantic + w.Query
	wa := w.Attention / total
	ws := w.Semantic / total
	wq := w.Query / total
	for i := range out {
		out[i] = float32(wa*float64(attn[i]) +
			ws*float64(sem[i]) +
			wq*float64(q[i]))
	}
	return out
}

// ApplyTokenPenalties downgrades low-content tokens in place: special
// tokens to zero, tokens with no ASCII alphanumerics by half, and subword
// continuations slightly. The checks are exclusive in that order.
func ApplyTokenPenalties(scores []float32, tokens []string, special []bool) {
	for i, tok := range tokens {
		switch {
		case special[i]:
			scores[i] = 0
		case !hasAlphanumeric(tok):
			scores[i] *= 0.5
		case strings.HasPrefix(tok, "##"):
			scores[i] *= 0.8
		}
	}
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}
