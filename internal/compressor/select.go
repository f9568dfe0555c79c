package compressor

import (
	"sort"

	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
)

// selectTokens marks the content tokens that survive compression and returns
// their positions in ascending order. Special tokens never count toward the
// budget and are never kept. The keep budget is max(minTokens, int(n*ratio))
// over n content tokens; when the budget covers all content tokens the caller
// passes the input through verbatim (passthrough true). Otherwise the
// threshold is the budget-th largest content score floored at hardThreshold,
// and every content token scoring at or above it survives. Ties can keep a
// few extra tokens.
func selectTokens(tokens []scoring.Token, targetRatio, hardThreshold float64, minTokens int) (kept []int, threshold float64, passthrough bool) {
	content := make([]int, 0, len(tokens))
	for i := range tokens {
		if !tokens[i].Special {
			content = append(content, i)
		}
	}
	n := len(content)

	budget := int(float64(n) * targetRatio)
	if budget < minTokens {
		budget = minTokens
	}
	if budget >= n {
		for _, idx := range content {
			tokens[idx].Kept = true
		}
		return content, 0, true
	}
	if budget < 1 {
		budget = 1
	}

	ranked := make([]float64, n)
	for i, idx := range content {
		ranked[i] = float64(tokens[idx].Score)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ranked)))

	threshold = ranked[budget-1]
	if threshold < hardThreshold {
		threshold = hardThreshold
	}

	kept = make([]int, 0, budget)
	for _, idx := range content {
		if float64(tokens[idx].Score) >= threshold {
			tokens[idx].Kept = true
			kept = append(kept, idx)
		}
	}
	return kept, threshold, false
}
