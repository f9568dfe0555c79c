// Package tokencount measures text length with a reference tokenizer.
//
// Counts feed compression metrics (original vs compressed tokens, ratio).
// They never drive keep/drop decisions, which operate on encoder tokens.
package tokencount

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultModel selects the encoding used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Counter wraps a tiktoken encoding for token counting.
type Counter struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewCounter creates a Counter using the byte-pair encoding of the given
// chat model. An empty model falls back to DefaultModel.
func NewCounter(model string) (*Counter, error) {
	if model == "" {
		model = DefaultModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tokencount: encoding for model %q: %w", model, err)
	}
	return &Counter{model: model, enc: enc}, nil
}

// Model returns the chat model whose encoding backs this counter.
func (c *Counter) Model() string {
	return c.model
}

// Count returns the number of tokens in s.
func (c *Counter) Count(s string) int {
	if s == "" {
		return 0
	}
	return len(c.enc.Encode(s, nil, nil))
}
