package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

// TokenCounter reports reference token counts for reduction statistics.
type TokenCounter interface {
	Count(text string) int
}

// CompressFunc produces the context variant a condition sends to the model.
// query carries the item's question for query-aware compression.
type CompressFunc func(ctx context.Context, text, query string) (string, error)

// Condition is one named compression strategy under evaluation.
type Condition struct {
	Name     string
	Compress CompressFunc
}

// Baseline returns the uncompressed control condition.
func Baseline() Condition {
	return Condition{
		Name: "baseline",
		Compress: func(ctx context.Context, text, query string) (string, error) {
			return text, nil
		},
	}
}

type runOptions struct {
	limit int
}

// RunOption adjusts a single run.
type RunOption func(*runOptions)

// WithLimit evaluates only the first n items.
func WithLimit(n int) RunOption {
	return func(o *runOptions) {
		o.limit = n
	}
}

// Runner drives conditions over a dataset and aggregates the results.
type Runner struct {
	client  ChatClient
	counter TokenCounter
	logger  *logging.Logger
}

// NewRunner wires a runner. The client and counter are required.
func NewRunner(client ChatClient, counter TokenCounter, logger *logging.Logger) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: chat client is required", ErrInvalidConfig)
	}
	if counter == nil {
		return nil, fmt.Errorf("%w: token counter is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{client: client, counter: counter, logger: logger}, nil
}

// Run evaluates every condition over the same items, in order. Individual
// item failures are logged and graded as incorrect; only context
// cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, items []Item, conditions []Condition, opts ...RunOption) (*Report, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit > 0 && o.limit < len(items) {
		items = items[:o.limit]
	}
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("%w: no conditions to run", ErrInvalidConfig)
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Items:   len(items),
	}
	r.logger.Info(ctx, "benchmark run starting",
		zap.String("run_id", report.RunID),
		zap.Int("items", len(items)),
		zap.Int("conditions", len(conditions)),
	)

	for _, cond := range conditions {
		summary, err := r.runCondition(ctx, cond, items)
		if err != nil {
			return nil, err
		}
		report.Summaries = append(report.Summaries, *summary)
	}

	r.logger.Info(ctx, "benchmark run finished",
		zap.String("run_id", report.RunID),
		zap.Duration("elapsed", time.Since(report.Started)),
	)
	return report, nil
}

func (r *Runner) runCondition(ctx context.Context, cond Condition, items []Item) (*Summary, error) {
	var (
		correct          int
		answered         int
		reductionSum     float64
		totalCompression time.Duration
	)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		compressed, err := cond.Compress(ctx, item.Context, item.Question)
		totalCompression += time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Grade against the original context rather than losing the item.
			r.logger.Warn(ctx, "compression failed, using original context",
				zap.String("condition", cond.Name),
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
			compressed = item.Context
		}

		origTokens := r.counter.Count(item.Context)
		compTokens := r.counter.Count(compressed)
		if origTokens > 0 {
			reductionSum += 1 - float64(compTokens)/float64(origTokens)
		}

		response, err := r.client.Complete(ctx, buildPrompt(compressed, item))
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn(ctx, "chat request failed, item graded incorrect",
				zap.String("condition", cond.Name),
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
		default:
			answered++
			if VerifyAnswer(response, item.Answer) {
				correct++
			}
		}

		done := i + 1
		r.logger.Info(ctx, "benchmark progress",
			zap.String("condition", cond.Name),
			zap.Int("done", done),
			zap.Int("total", len(items)),
			zap.Float64("accuracy_pct", 100*float64(correct)/float64(done)),
			zap.Float64("reduction_pct", 100*reductionSum/float64(done)),
			zap.Duration("avg_compression", totalCompression/time.Duration(done)),
		)
	}

	n := len(items)
	return &Summary{
		Condition:            cond.Name,
		Items:                n,
		Answered:             answered,
		Correct:              correct,
		Accuracy:             100 * float64(correct) / float64(n),
		MeanReductionPct:     100 * reductionSum / float64(n),
		MeanCompressionTime:  totalCompression / time.Duration(n),
		TotalCompressionTime: totalCompression,
	}, nil
}

// buildPrompt renders the grading prompt. The shape is fixed; the answer
// instruction keeps completions short enough for letter extraction.
func buildPrompt(passage string, item Item) string {
	return fmt.Sprintf(
		"Context:\n%s\n\nQuestion: %s\nOptions:\n(A) %s\n(B) %s\n(C) %s\n(D) %s\n\n"+
			"Answer with ONLY the letter (A), (B), (C), or (D). Do NOT reply with anything other than the answer choice.",
		passage, item.Question, item.ChoiceA, item.ChoiceB, item.ChoiceC, item.ChoiceD,
	)
}
