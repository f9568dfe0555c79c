package encoder

// Encoding is the tokenized form of one chunk of text.
type Encoding struct {
	// Tokens holds WordPiece surface forms, special tokens included.
	Tokens []string
	// IDs holds vocabulary ids, typed for the ONNX input tensor.
	IDs []int64
	// Special marks [CLS], [SEP], and other non-content tokens.
	Special []bool
}

// Len returns the sequence length.
func (e *Encoding) Len() int {
	return len(e.IDs)
}

// Output holds the activations of one forward pass.
type Output struct {
	// Embeddings is the last hidden state, indexed [token][dim].
	Embeddings [][]float32
	// Attentions is indexed [layer][head][from][to]; row f holds the
	// attention position f pays to every other position.
	Attentions [][][][]float32
}
