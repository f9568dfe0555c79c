// Package scoring implements the per-token importance signals behind
// compression: attention-derived importance, semantic centrality, and
// query relevance, plus their normalization, fusion, and position-bias
// correction. All functions are pure over score slices; only query
// relevance touches an embedding provider.
package scoring

// Token is the working record for one token during a compression pass.
// Records are created per call and discarded after reconstruction.
type Token struct {
	Text     string
	ID       int
	Position int
	Special  bool

	Attention float32
	Semantic  float32
	Query     float32
	Score     float32

	Kept bool
}
