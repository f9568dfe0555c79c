package scoring

import "unicode"

// SplitSentences splits text at whitespace runs that follow terminal
// punctuation (. ! ?). The punctuation stays with the preceding sentence
// and the whitespace is consumed. Text without a boundary comes back as a
// single element; trailing whitespace after a terminator yields a final
// empty element.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) && i > start && isSentenceTerminal(runes[i-1]) {
			sentences = append(sentences, string(runes[start:i]))
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	sentences = append(sentences, string(runes[start:]))
	return sentences
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
