package numerals

import (
	"strings"

	"github.com/neurlang/NumToWordsGo/NumToWords"
)

var digitNames = [...]string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

var irregularOrdinals = map[string]string{
	"one":    "first",
	"two":    "second",
	"three":  "third",
	"five":   "fifth",
	"eight":  "eighth",
	"nine":   "ninth",
	"twelve": "twelfth",
}

// groupedFrom is where spelling switches to three-digit groups.
// NumToWords recurses without bound from ten billion upward.
const groupedFrom = 1_000_000_000

// scaleWords covers every group of a 64-bit int.
var scaleWords = [...]string{"", "thousand", "million", "billion", "trillion", "quadrillion", "quintillion"}

func numToWords(n int) (string, error) {
	return NumToWords.Convert(n, "en")
}

// spellDigits reads each digit on its own: "120" -> "one two zero".
func spellDigits(digits string) string {
	words := make([]string, 0, len(digits))
	for _, r := range digits {
		if r >= '0' && r <= '9' {
			words = append(words, digitNames[r-'0'])
		}
	}

	return strings.Join(words, " ")
}

// ordinal turns the last word of a cardinal into its ordinal form.
func ordinal(cardinal string) string {
	i := strings.LastIndexByte(cardinal, ' ')
	head, last := cardinal[:i+1], cardinal[i+1:]

	switch {
	case irregularOrdinals[last] != "":
		last = irregularOrdinals[last]
	case strings.HasSuffix(last, "y"):
		last = strings.TrimSuffix(last, "y") + "ieth"
	default:
		last += "th"
	}

	return head + last
}
