//go:build cgo

// Package encoder adapts a local ONNX transformer encoder: WordPiece
// tokenization plus forward passes that expose per-token embeddings and
// per-layer attention weights.
package encoder

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Encoder runs tokenization and inference for one local encoder model.
// Safe for concurrent use; forward passes serialize on an internal mutex
// because the runtime does not document concurrent Run calls on a single
// session as safe.
type Encoder struct {
	cfg       Config
	tokenizer *tokenizer.Tokenizer

	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// New loads tokenizer.json and model.onnx from cfg.ModelDir and prepares
// an inference session. The process-wide ONNX runtime environment is
// initialized on first use and shared with other sessions.
func New(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, err
	}

	tk, err := pretrained.FromFile(filepath.Join(cfg.ModelDir, "tokenizer.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: loading tokenizer from %s: %v", ErrModelLoad, cfg.ModelDir, err)
	}
	tk.WithTruncation(&tokenizer.TruncationParams{
		MaxLength: cfg.MaxLength,
		Strategy:  tokenizer.LongestFirst,
	})

	session, err := ort.NewDynamicAdvancedSession(
		filepath.Join(cfg.ModelDir, "model.onnx"),
		cfg.inputNames(),
		cfg.outputNames(),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating session for %s: %v", ErrModelLoad, cfg.ModelDir, err)
	}

	return &Encoder{cfg: cfg, tokenizer: tk, session: session}, nil
}

var runtimeInit sync.Mutex

func initRuntime(libraryPath string) error {
	runtimeInit.Lock()
	defer runtimeInit.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libraryPath == "" {
		libraryPath = LibraryPath()
	}
	if libraryPath == "" {
		return fmt.Errorf("%w: onnxruntime shared library not found; set ONNX_PATH or run 'tpress models download --onnxruntime'", ErrModelLoad)
	}
	ort.SetSharedLibraryPath(libraryPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("%w: initializing onnxruntime: %v", ErrModelLoad, err)
	}
	return nil
}

// ShutdownRuntime tears down the process-wide ONNX runtime environment.
// Call only after every encoder and embedding provider is closed.
func ShutdownRuntime() error {
	runtimeInit.Lock()
	defer runtimeInit.Unlock()
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Encode tokenizes text with special tokens added and truncation applied.
// Input beyond MaxLength tokens is silently dropped.
func (e *Encoder) Encode(text string) (*Encoding, error) {
	enc, err := e.tokenizer.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenizing: %v", ErrInference, err)
	}

	n := len(enc.Ids)
	out := &Encoding{
		Tokens:  make([]string, n),
		IDs:     make([]int64, n),
		Special: make([]bool, n),
	}
	copy(out.Tokens, enc.Tokens)
	for i, id := range enc.Ids {
		out.IDs[i] = int64(id)
	}
	for i, m := range enc.SpecialTokenMask {
		out.Special[i] = m == 1
	}
	return out, nil
}

// Forward runs the model over one encoding and copies out the last hidden
// state and every layer's attention weights.
func (e *Encoder) Forward(ctx context.Context, enc *Encoding) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seq := enc.Len()
	if seq == 0 {
		return nil, fmt.Errorf("%w: empty encoding", ErrInference)
	}

	idsTensor, err := ort.NewTensor(ort.NewShape(1, int64(seq)), enc.IDs)
	if err != nil {
		return nil, fmt.Errorf("%w: creating input_ids tensor: %v", ErrInference, err)
	}
	defer idsTensor.Destroy()

	mask := make([]int64, seq)
	for i := range mask {
		mask[i] = 1
	}
	maskTensor, err := ort.NewTensor(ort.NewShape(1, int64(seq)), mask)
	if err != nil {
		return nil, fmt.Errorf("%w: creating attention_mask tensor: %v", ErrInference, err)
	}
	defer maskTensor.Destroy()

	hidden, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(seq), int64(e.cfg.HiddenSize)))
	if err != nil {
		return nil, fmt.Errorf("%w: allocating hidden-state tensor: %v", ErrInference, err)
	}
	defer hidden.Destroy()

	attnTensors := make([]*ort.Tensor[float32], e.cfg.NumLayers)
	defer destroyTensors(attnTensors)

	outputs := make([]ort.ArbitraryTensor, 0, e.cfg.NumLayers+1)
	outputs = append(outputs, hidden)
	for l := range attnTensors {
		t, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(e.cfg.NumHeads), int64(seq), int64(seq)))
		if err != nil {
			return nil, fmt.Errorf("%w: allocating attention tensor %d: %v", ErrInference, l, err)
		}
		attnTensors[l] = t
		outputs = append(outputs, t)
	}

	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: encoder is closed", ErrInference)
	}
	err = e.session.Run([]ort.ArbitraryTensor{idsTensor, maskTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	out := &Output{
		Embeddings: copyMatrix(hidden.GetData(), seq, e.cfg.HiddenSize),
		Attentions: make([][][][]float32, e.cfg.NumLayers),
	}
	for l, t := range attnTensors {
		out.Attentions[l] = copyAttention(t.GetData(), e.cfg.NumHeads, seq)
	}
	return out, nil
}

// Close releases the inference session. The shared runtime environment
// stays up for other sessions; see ShutdownRuntime.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

func destroyTensors(ts []*ort.Tensor[float32]) {
	for _, t := range ts {
		if t != nil {
			t.Destroy()
		}
	}
}

// copyMatrix reshapes a flat [rows*cols] buffer into row slices over one
// fresh backing array, detaching the data from the tensor's lifetime.
func copyMatrix(data []float32, rows, cols int) [][]float32 {
	buf := make([]float32, rows*cols)
	copy(buf, data)
	out := make([][]float32, rows)
	for i := range out {
		out[i] = buf[i*cols : (i+1)*cols]
	}
	return out
}

func copyAttention(data []float32, heads, seq int) [][][]float32 {
	buf := make([]float32, heads*seq*seq)
	copy(buf, data)
	out := make([][][]float32, heads)
	for h := range out {
		rows := make([][]float32, seq)
		for i := range rows {
			off := (h*seq + i) * seq
			rows[i] = buf[off : off+seq]
		}
		out[h] = rows
	}
	return out
}
