package benchmark

import (
	"regexp"
	"strings"
)

// answerPatterns are tried in order against the cleaned, uppercased
// response. Earlier patterns are more specific; the bare standalone letter
// is the last resort.
var answerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(([A-D])\)`),
	regexp.MustCompile(`\b([A-D])\.`),
	regexp.MustCompile(`OPTION[:\s]*\(?([A-D])\)?`),
	regexp.MustCompile(`ANSWER[:\s]*\(?([A-D])\)?`),
	regexp.MustCompile(`CORRECT[^A-D]*([A-D])`),
	regexp.MustCompile(`^\s*([A-D])\b`),
	regexp.MustCompile(`\b([A-D])\b`),
}

// ExtractAnswer pulls a multiple-choice letter out of a free-text
// completion. Markdown emphasis is stripped and the text uppercased before
// matching; a response that is exactly one letter wins immediately.
func ExtractAnswer(response string) (string, bool) {
	cleaned := strings.ReplaceAll(response, "*", "")
	upper := strings.ToUpper(strings.TrimSpace(cleaned))

	switch upper {
	case "A", "B", "C", "D":
		return upper, true
	}

	for _, pattern := range answerPatterns {
		if m := pattern.FindStringSubmatch(upper); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// VerifyAnswer reports whether the completion names the gold letter.
func VerifyAnswer(response, gold string) bool {
	predicted, ok := ExtractAnswer(response)
	if !ok {
		return false
	}
	return predicted == strings.ToUpper(strings.TrimSpace(gold))
}
