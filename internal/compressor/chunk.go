package compressor

import (
	"strings"

	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
)

// splitIntoChunks packs sentences greedily into chunks of at most 80% of
// chunkSize words. A chunk flushes when the next sentence would push it past
// the budget; a single oversized sentence becomes its own chunk and the
// encoder truncates it.
func splitIntoChunks(text string, chunkSize int) []string {
	sentences := scoring.SplitSentences(text)
	limit := float64(chunkSize) * 0.8

	var chunks []string
	var current []string
	words := 0
	for _, sentence := range sentences {
		sentenceWords := len(strings.Fields(sentence))
		if float64(words+sentenceWords) > limit && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{sentence}
			words = sentenceWords
		} else {
			current = append(current, sentence)
			words += sentenceWords
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
