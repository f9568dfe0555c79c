package compressor

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// reconstruct joins the kept surface forms back into text. WordPiece
// continuations merge with their predecessor without a space, everything
// else is space-separated; whitespace runs collapse to one space.
func reconstruct(tokens []scoring.Token) string {
	parts := make([]string, 0, len(tokens))
	for i := range tokens {
		if tokens[i].Kept {
			parts = append(parts, tokens[i].Text)
		}
	}
	text := strings.ReplaceAll(strings.Join(parts, " "), " ##", "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
