package compressor

import "time"

// Result is the outcome of one compression call.
type Result struct {
	OriginalText   string
	CompressedText string

	// OriginalTokens and CompressedTokens are reference-tokenizer counts,
	// reported for budgeting. They do not drive selection.
	OriginalTokens   int
	CompressedTokens int

	// Ratio is CompressedTokens over OriginalTokens, 1.0 when the original
	// is empty.
	Ratio float64

	// TokenScores holds the fused per-token scores in sequence order.
	// Nil for multi-chunk runs.
	TokenScores []float32
	// KeptIndices lists surviving token positions in ascending order.
	// Nil for multi-chunk runs.
	KeptIndices []int

	ProcessingTime time.Duration
}

// ReductionPct reports how much of the original was removed, in percent.
func (r *Result) ReductionPct() float64 {
	return (1 - r.Ratio) * 100
}
