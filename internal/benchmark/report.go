package benchmark

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Summary aggregates one condition's results over the full item set.
type Summary struct {
	Condition string
	Items     int
	// Answered counts items whose chat request succeeded. Failed items stay
	// in the accuracy denominator.
	Answered int
	Correct  int
	// Accuracy and MeanReductionPct are percentages in [0, 100].
	Accuracy             float64
	MeanReductionPct     float64
	MeanCompressionTime  time.Duration
	TotalCompressionTime time.Duration
}

// Report holds the outcome of one benchmark run.
type Report struct {
	RunID     string
	Started   time.Time
	Items     int
	Summaries []Summary
}

// WriteTable renders the summaries as an aligned text table.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Condition\tAccuracy\tToken Reduction\tAvg Latency\tTotal Time\n")
	for _, s := range r.Summaries {
		fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%.2fs\t%.1fs\n",
			s.Condition,
			s.Accuracy,
			s.MeanReductionPct,
			s.MeanCompressionTime.Seconds(),
			s.TotalCompressionTime.Seconds(),
		)
	}
	return tw.Flush()
}

// String renders the report with a header line, for log output.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s over %d items\n", r.RunID, r.Items)
	_ = r.WriteTable(&b)
	return b.String()
}
