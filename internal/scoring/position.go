package scoring

// ApplyPositionBias boosts scores in the first and last 10% of the
// sequence in place. Downstream models recall document heads and tails
// best, so tokens there survive compression preferentially. Sequences
// shorter than 10 tokens are left untouched.
func ApplyPositionBias(scores []float32, startBoost, endBoost float64) {
	n := len(scores)
	if n < 10 {
		return
	}
	startRegion := int(float64(n) * 0.1)
	endRegion := int(float64(n) * 0.9)
	for i := 0; i < startRegion; i++ {
		scores[i] = float32(float64(scores[i]) * startBoost)
	}
	for i := endRegion; i < n; i++ {
		scores[i] = float32(float64(scores[i]) * endBoost)
	}
}
