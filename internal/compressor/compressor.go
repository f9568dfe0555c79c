// Package compressor removes low-importance tokens from text so more source
// material fits in an LLM's context window. Importance blends three signals
// from a local transformer encoder: attention received by each token,
// semantic similarity to the sequence mean, and, when a query is given,
// sentence-level relevance to that query. The highest-scoring tokens survive
// under a target ratio and are stitched back into text.
package compressor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tokenpress/internal/embeddings"
	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
	"github.com/fyrsmithlabs/tokenpress/internal/logging"
	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
	"github.com/fyrsmithlabs/tokenpress/internal/telemetry"
	"github.com/fyrsmithlabs/tokenpress/internal/tokencount"
)

const tracerName = "github.com/fyrsmithlabs/tokenpress/internal/compressor"
const meterName = "compressor"

// Encoder produces tokens, embeddings, and attention maps for one text.
// *encoder.Encoder satisfies it.
type Encoder interface {
	Encode(text string) (*encoder.Encoding, error)
	Forward(ctx context.Context, enc *encoder.Encoding) (*encoder.Output, error)
}

// Embedder produces sentence embeddings for query relevance.
// embeddings.Provider satisfies it.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TokenCounter reports reference token counts for compression metrics.
type TokenCounter interface {
	Count(text string) int
}

type callOptions struct {
	targetRatio    float64
	hasTargetRatio bool
}

// Option adjusts a single compression call.
type Option func(*callOptions)

// WithTargetRatio overrides the configured target ratio for one call. The
// ratio must be in (0, 1].
func WithTargetRatio(r float64) Option {
	return func(o *callOptions) {
		o.targetRatio = r
		o.hasTargetRatio = true
	}
}

// Compressor scores tokens and selects which ones survive. Safe for
// concurrent use when its dependencies are.
type Compressor struct {
	cfg      Config
	encoder  Encoder
	embedder Embedder
	counter  TokenCounter
	logger   *logging.Logger

	tracer trace.Tracer
	meter  metric.Meter

	operations  metric.Int64Counter
	duration    metric.Float64Histogram
	ratioHist   metric.Float64Histogram
	tokensSaved metric.Int64Counter
	errorCount  metric.Int64Counter
}

// New wires a compressor from already-constructed dependencies. The embedder
// may be nil when query-aware compression is not needed; the counter may be
// nil, in which case the default reference tokenizer is loaded.
func New(cfg Config, enc Encoder, emb Embedder, counter TokenCounter, logger *logging.Logger, tel *telemetry.Telemetry) (*Compressor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: encoder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if counter == nil {
		tc, err := tokencount.NewCounter(tokencount.DefaultModel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		counter = tc
	}

	c := &Compressor{
		cfg:      cfg,
		encoder:  enc,
		embedder: emb,
		counter:  counter,
		logger:   logger,
		tracer:   tel.Tracer(tracerName),
		meter:    tel.Meter(meterName),
	}
	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return c, nil
}

// NewFromConfig loads the encoder and, when query-aware compression is
// enabled, the embedding provider, then wires a compressor around them.
// Model loading failures are wrapped in ErrModelLoad.
func NewFromConfig(ctx context.Context, cfg Config, encCfg encoder.Config, embCfg embeddings.Config, logger *logging.Logger, tel *telemetry.Telemetry) (*Compressor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if cfg.EncoderModel != "" {
		encCfg.ModelDir = cfg.EncoderModel
	}
	// The chunk budget doubles as the encoder truncation length.
	encCfg.MaxLength = cfg.ChunkSize

	loadStart := time.Now()
	enc, err := encoder.New(encCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	var emb Embedder
	var provider embeddings.Provider
	if cfg.QueryAware {
		if cfg.EmbeddingModel != "" {
			embCfg.Model = cfg.EmbeddingModel
		}
		provider, err = embeddings.New(embCfg, logger)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		emb = provider
	}

	c, err := New(cfg, enc, emb, nil, logger, tel)
	if err != nil {
		enc.Close()
		if provider != nil {
			provider.Close()
		}
		return nil, err
	}
	logger.Debug(ctx, "compression models loaded",
		zap.String("encoder_model", encCfg.ModelDir),
		zap.Duration("load_time", time.Since(loadStart)),
	)
	return c, nil
}

// Close releases the encoder and embedding provider when they expose Close.
func (c *Compressor) Close() error {
	var errs []error
	if closer, ok := c.encoder.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := c.embedder.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Compress scores and selects over a single encoder window. Text beyond the
// encoder truncation length is dropped silently; use CompressChunked or
// CompressAuto for long inputs.
func (c *Compressor) Compress(ctx context.Context, text, query string, opts ...Option) (*Result, error) {
	ratio, err := c.resolveRatio(opts)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "compressor.compress",
		trace.WithAttributes(
			attribute.Float64("target_ratio", ratio),
			attribute.Bool("query_aware", query != "" && c.cfg.QueryAware),
			attribute.Int("text_length", len(text)),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := c.compressOne(ctx, text, query, ratio)
	if err != nil {
		span.RecordError(err)
		c.recordError(ctx, "single")
		return nil, err
	}

	c.recordSuccess(ctx, "single", result, time.Since(start))
	span.SetAttributes(
		attribute.Int("original_tokens", result.OriginalTokens),
		attribute.Int("compressed_tokens", result.CompressedTokens),
		attribute.Float64("ratio", result.Ratio),
	)
	return result, nil
}

// CompressChunked splits text into sentence-aligned chunks, compresses each
// independently in order, and joins the outputs with single spaces. Token
// counts are summed; per-token scores and kept indices are dropped for
// multi-chunk runs.
func (c *Compressor) CompressChunked(ctx context.Context, text, query string, opts ...Option) (*Result, error) {
	ratio, err := c.resolveRatio(opts)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "compressor.compress_chunked",
		trace.WithAttributes(
			attribute.Float64("target_ratio", ratio),
			attribute.Int("text_length", len(text)),
		),
	)
	defer span.End()

	start := time.Now()
	chunks := splitIntoChunks(text, c.cfg.ChunkSize)
	span.SetAttributes(attribute.Int("chunks", len(chunks)))

	if len(chunks) == 1 {
		result, err := c.compressOne(ctx, chunks[0], query, ratio)
		if err != nil {
			span.RecordError(err)
			c.recordError(ctx, "chunked")
			return nil, err
		}
		result.OriginalText = text
		result.ProcessingTime = time.Since(start)
		c.recordSuccess(ctx, "chunked", result, time.Since(start))
		return result, nil
	}

	parts := make([]string, 0, len(chunks))
	var originalTokens, compressedTokens int
	for _, chunk := range chunks {
		res, err := c.compressOne(ctx, chunk, query, ratio)
		if err != nil {
			span.RecordError(err)
			c.recordError(ctx, "chunked")
			return nil, err
		}
		parts = append(parts, res.CompressedText)
		originalTokens += res.OriginalTokens
		compressedTokens += res.CompressedTokens
	}

	outRatio := 1.0
	if originalTokens > 0 {
		outRatio = float64(compressedTokens) / float64(originalTokens)
	}
	result := &Result{
		OriginalText:     text,
		CompressedText:   strings.Join(parts, " "),
		OriginalTokens:   originalTokens,
		CompressedTokens: compressedTokens,
		Ratio:            outRatio,
		ProcessingTime:   time.Since(start),
	}

	c.recordSuccess(ctx, "chunked", result, time.Since(start))
	span.SetAttributes(
		attribute.Int("original_tokens", result.OriginalTokens),
		attribute.Int("compressed_tokens", result.CompressedTokens),
		attribute.Float64("ratio", result.Ratio),
	)
	return result, nil
}

// CompressAuto picks chunked compression when the input exceeds
// AutoChunkWords words and chunking is enabled.
func (c *Compressor) CompressAuto(ctx context.Context, text, query string, opts ...Option) (*Result, error) {
	if c.cfg.EnableChunking && len(strings.Fields(text)) > c.cfg.AutoChunkWords {
		return c.CompressChunked(ctx, text, query, opts...)
	}
	return c.Compress(ctx, text, query, opts...)
}

// compressOne runs the scoring pipeline over one encoder window.
func (c *Compressor) compressOne(ctx context.Context, text, query string, targetRatio float64) (*Result, error) {
	start := time.Now()

	if query != "" && c.cfg.QueryAware && c.embedder == nil {
		return nil, fmt.Errorf("%w: query given but no embedding provider is configured", ErrInvalidConfig)
	}
	if strings.TrimSpace(text) == "" {
		return c.verbatimResult(text, start), nil
	}

	enc, err := c.encoder.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrInference, err)
	}
	if enc.Len() == 0 {
		return c.verbatimResult(text, start), nil
	}

	out, err := c.encoder.Forward(ctx, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	attention := scoring.AttentionImportance(out.Attentions, c.cfg.layerWeighting())
	semantic := scoring.SemanticCentrality(out.Embeddings)
	if len(attention) != enc.Len() || len(semantic) != enc.Len() {
		return nil, fmt.Errorf("%w: encoder output length mismatch", ErrInference)
	}

	var queryScores []float32
	if query != "" && c.cfg.QueryAware {
		queryScores, err = scoring.QueryRelevance(ctx, c.embedder, enc.Tokens, text, query)
		if err != nil {
			return nil, fmt.Errorf("query relevance: %w", err)
		}
	}

	fused := scoring.Fuse(attention, semantic, queryScores, scoring.Weights{
		Attention: c.cfg.AttentionWeight,
		Semantic:  c.cfg.SemanticWeight,
		Query:     c.cfg.QueryWeight,
	})
	if c.cfg.UsePositionBias {
		scoring.ApplyPositionBias(fused, c.cfg.PositionBoostStart, c.cfg.PositionBoostEnd)
	}
	scoring.ApplyTokenPenalties(fused, enc.Tokens, enc.Special)
	final := scoring.Normalize(fused)

	tokens := make([]scoring.Token, enc.Len())
	for i := range tokens {
		tokens[i] = scoring.Token{
			Text:      enc.Tokens[i],
			ID:        int(enc.IDs[i]),
			Position:  i,
			Special:   enc.Special[i],
			Attention: attention[i],
			Semantic:  semantic[i],
			Score:     final[i],
		}
		if queryScores != nil {
			tokens[i].Query = queryScores[i]
		}
	}

	kept, _, passthrough := selectTokens(tokens, targetRatio, c.cfg.HardThreshold, c.cfg.MinTokens)

	compressed := text
	if !passthrough {
		compressed = reconstruct(tokens)
	}

	originalTokens := c.counter.Count(text)
	compressedTokens := c.counter.Count(compressed)
	ratio := 1.0
	if originalTokens > 0 {
		ratio = float64(compressedTokens) / float64(originalTokens)
	}

	return &Result{
		OriginalText:     text,
		CompressedText:   compressed,
		OriginalTokens:   originalTokens,
		CompressedTokens: compressedTokens,
		Ratio:            ratio,
		TokenScores:      final,
		KeptIndices:      kept,
		ProcessingTime:   time.Since(start),
	}, nil
}

// verbatimResult passes degenerate input through unchanged.
func (c *Compressor) verbatimResult(text string, start time.Time) *Result {
	count := c.counter.Count(text)
	return &Result{
		OriginalText:     text,
		CompressedText:   text,
		OriginalTokens:   count,
		CompressedTokens: count,
		Ratio:            1.0,
		ProcessingTime:   time.Since(start),
	}
}

func (c *Compressor) resolveRatio(opts []Option) (float64, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasTargetRatio {
		return c.cfg.TargetRatio, nil
	}
	if o.targetRatio <= 0 || o.targetRatio > 1 {
		return 0, fmt.Errorf("%w: %v not in (0, 1]", ErrInvalidRatio, o.targetRatio)
	}
	return o.targetRatio, nil
}

func (c *Compressor) recordSuccess(ctx context.Context, mode string, result *Result, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	c.operations.Add(ctx, 1, attrs)
	c.duration.Record(ctx, elapsed.Seconds(), attrs)
	c.ratioHist.Record(ctx, result.Ratio, attrs)
	if saved := result.OriginalTokens - result.CompressedTokens; saved > 0 {
		c.tokensSaved.Add(ctx, int64(saved), attrs)
	}
}

func (c *Compressor) recordError(ctx context.Context, mode string) {
	c.errorCount.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// initMetrics creates the OpenTelemetry instruments.
func (c *Compressor) initMetrics() error {
	var err error

	c.operations, err = c.meter.Int64Counter(
		"tokenpress.compression.operations_total",
		metric.WithDescription("Total number of compression operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operations counter: %w", err)
	}

	c.duration, err = c.meter.Float64Histogram(
		"tokenpress.compression.duration_seconds",
		metric.WithDescription("Time spent on compression operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}

	c.ratioHist, err = c.meter.Float64Histogram(
		"tokenpress.compression.ratio",
		metric.WithDescription("Achieved compressed-to-original token ratios"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create ratio histogram: %w", err)
	}

	c.tokensSaved, err = c.meter.Int64Counter(
		"tokenpress.compression.tokens_saved_total",
		metric.WithDescription("Total tokens removed across operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tokens saved counter: %w", err)
	}

	c.errorCount, err = c.meter.Int64Counter(
		"tokenpress.compression.errors_total",
		metric.WithDescription("Total number of compression errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create errors counter: %w", err)
	}

	return nil
}
