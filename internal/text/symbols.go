package text

import (
	"regexp"
	"strings"
)

var (
	symbolReplacer = strings.NewReplacer(
		";", ",",
		":", ",",
		"-", " ",
		"&", "and",
	)
	strippedSymbols = regexp.MustCompile(`[()\[\]<>"]+`)
)

// ExpandSymbols rewrites punctuation the converters cannot pronounce:
// semicolons and colons become commas, hyphens become spaces, ampersands
// become "and". Brackets and double quotes are then removed by StripSymbols.
func ExpandSymbols(s string) string {
	return StripSymbols(symbolReplacer.Replace(s))
}

// StripSymbols deletes parentheses, square and angle brackets and double
// quotes. It is idempotent.
func StripSymbols(s string) string {
	return strippedSymbols.ReplaceAllLiteralString(s, "")
}
