package http

// CompressRequest is the request body for POST /api/v1/compress.
type CompressRequest struct {
	Text string `json:"text"`
	// Query enables query-aware scoring when the daemon has an embedding
	// provider configured.
	Query string `json:"query,omitempty"`
	// TargetRatio overrides the configured keep fraction for this request.
	// Zero means use the configured default.
	TargetRatio float64 `json:"target_ratio,omitempty"`
	// Chunked forces sentence-aligned chunked compression for long inputs.
	Chunked bool `json:"chunked,omitempty"`
}

// CompressResponse is the response body for POST /api/v1/compress.
type CompressResponse struct {
	CompressedText   string  `json:"compressed_text"`
	OriginalTokens   int     `json:"original_tokens"`
	CompressedTokens int     `json:"compressed_tokens"`
	Ratio            float64 `json:"ratio"`
	ReductionPct     float64 `json:"reduction_pct"`
	// KeptIndices is omitted for multi-chunk runs.
	KeptIndices []int `json:"kept_indices,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
