package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "three terminators",
			in:   "One. Two! Three?",
			want: []string{"One.", "Two!", "Three?"},
		},
		{
			name: "no boundary",
			in:   "no terminal punctuation here",
			want: []string{"no terminal punctuation here"},
		},
		{
			name: "whitespace run consumed",
			in:   "First.   Second.",
			want: []string{"First.", "Second."},
		},
		{
			name: "newline boundary",
			in:   "One.\nTwo.",
			want: []string{"One.", "Two."},
		},
		{
			name: "trailing space yields empty tail",
			in:   "Done. ",
			want: []string{"Done.", ""},
		},
		{
			name: "punctuation without following space stays put",
			in:   "e.g.maybe so",
			want: []string{"e.g.maybe so"},
		},
		{
			name: "abbreviation splits too",
			in:   "Dr. Smith arrived.",
			want: []string{"Dr.", "Smith arrived."},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}
