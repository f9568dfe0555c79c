// Package benchmark grades compression quality on a multiple-choice QA
// dataset.
//
// Each item's context is compressed, the question is asked against the
// compressed context through an OpenAI-compatible chat-completion endpoint,
// and a letter answer is extracted from the free-text reply. A run compares
// conditions (for example baseline vs compressed) over the same items and
// aggregates per condition:
//   - Accuracy: correct answers over all items. A failed API call counts
//     against accuracy but never aborts the run.
//   - Token reduction: mean of 1 - compressed/original, tiktoken counts.
//   - Compression latency: time spent compressing, excluding API time.
//
// # Usage
//
//	items, err := benchmark.LoadDataset("longbench.json")
//	client, err := benchmark.NewClient(benchmark.NewDefaultClientConfig())
//	runner, err := benchmark.NewRunner(client, counter, logger)
//	report, err := runner.Run(ctx, items, []benchmark.Condition{
//	    benchmark.Baseline(),
//	    {Name: "compressed", Compress: func(ctx context.Context, text, query string) (string, error) {
//	        res, err := comp.CompressAuto(ctx, text, query)
//	        if err != nil {
//	            return "", err
//	        }
//	        return res.CompressedText, nil
//	    }},
//	}, benchmark.WithLimit(50))
//
// The report renders as an aligned text table via Report.WriteTable.
package benchmark
