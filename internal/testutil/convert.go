package testutil

import (
	"slices"
	"strings"
	"testing"

	"github.com/example/go-ttstokenizer/internal/phonetic"
)

// WordConverter returns a converter that looks each whitespace-separated
// word up in pron and joins the results with phonetic.Separator. Trailing
// punctuation is emitted as a symbol of its own. Unknown words fail with
// *phonetic.UnknownWordError.
func WordConverter(pron map[string][]string) phonetic.Converter {
	return phonetic.Func(func(text string) ([]string, error) {
		var out []string
		for _, field := range strings.Fields(text) {
			word := strings.TrimRight(field, ".,!?")
			if word != "" {
				syms, ok := pron[word]
				if !ok {
					return nil, &phonetic.UnknownWordError{Word: word}
				}
				if len(out) > 0 {
					out = append(out, phonetic.Separator)
				}
				out = append(out, syms...)
			}

			for _, r := range field[len(word):] {
				if len(out) > 0 {
					out = append(out, phonetic.Separator)
				}
				out = append(out, string(r))
			}
		}

		return out, nil
	})
}

// RuneConverter returns a converter that emits one symbol per rune, with
// spaces mapped to phonetic.Separator.
func RuneConverter() phonetic.Converter {
	return phonetic.Func(func(text string) ([]string, error) {
		out := make([]string, 0, len(text))
		for _, r := range text {
			if r == ' ' {
				out = append(out, phonetic.Separator)
				continue
			}
			out = append(out, string(r))
		}

		return out, nil
	})
}

// AssertIDs fails the test if got and want differ.
func AssertIDs(tb testing.TB, got, want []int64) {
	tb.Helper()

	if !slices.Equal(got, want) {
		tb.Fatalf("ids = %v, want %v", got, want)
	}
}
