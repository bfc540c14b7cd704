// Package numerals spells out numbers, currency amounts and ordinals in
// lowercase English text.
package numerals

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	commaNumberRe   = regexp.MustCompile(`[0-9][0-9,]+[0-9]`)
	decimalNumberRe = regexp.MustCompile(`[0-9]+\.[0-9]+`)
	poundsRe        = regexp.MustCompile(`£([0-9,]*[0-9]+)`)
	dollarsRe       = regexp.MustCompile(`\$([0-9.,]*[0-9]+)`)
	ordinalRe       = regexp.MustCompile(`([0-9]+)(st|nd|rd|th)`)
	numberRe        = regexp.MustCompile(`[0-9]+`)
)

// CardinalFunc spells a non-negative integer as English words.
type CardinalFunc func(n int) (string, error)

// Expander rewrites digit sequences as words. The zero value is not usable;
// call New.
type Expander struct {
	cardinal CardinalFunc
}

// New returns an Expander backed by NumToWordsGo.
func New() *Expander {
	return &Expander{cardinal: numToWords}
}

// NewWithCardinal returns an Expander that spells integers with fn.
func NewWithCardinal(fn CardinalFunc) *Expander {
	return &Expander{cardinal: fn}
}

// Expand applies, in order: thousands-comma removal, pounds, dollars,
// decimal points, ordinals and plain integers. Numbers the speller cannot
// handle are read digit by digit, so Expand never fails.
func (e *Expander) Expand(s string) (string, error) {
	s = commaNumberRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, ",", "")
	})
	s = poundsRe.ReplaceAllString(s, "$1 pounds")
	s = dollarsRe.ReplaceAllStringFunc(s, func(m string) string {
		return expandDollars(dollarsRe.FindStringSubmatch(m)[1])
	})
	s = decimalNumberRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Replace(m, ".", " point ", 1)
	})
	s = ordinalRe.ReplaceAllStringFunc(s, func(m string) string {
		return ordinal(e.spell(ordinalRe.FindStringSubmatch(m)[1]))
	})
	s = numberRe.ReplaceAllStringFunc(s, e.expandNumber)

	return s, nil
}

func expandDollars(amount string) string {
	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return amount + " dollars"
	}

	dollars := atoiOrZero(parts[0])
	cents := 0
	if len(parts) > 1 {
		cents = atoiOrZero(parts[1])
	}

	switch {
	case dollars != 0 && cents != 0:
		return parts[0] + " " + unit(dollars, "dollar") + ", " + parts[1] + " " + unit(cents, "cent")
	case dollars != 0:
		return parts[0] + " " + unit(dollars, "dollar")
	case cents != 0:
		return parts[1] + " " + unit(cents, "cent")
	default:
		return "zero dollars"
	}
}

func unit(n int, singular string) string {
	if n == 1 {
		return singular
	}

	return singular + "s"
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}

	return n
}

// expandNumber reads 1001..2999 as years ("nineteen eighty four") and
// everything else as a cardinal.
func (e *Expander) expandNumber(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 1000 || n >= 3000 {
		return e.spell(digits)
	}

	switch {
	case n == 2000:
		return "two thousand"
	case n > 2000 && n < 2010:
		return "two thousand " + e.spellInt(n%100)
	case n%100 == 0:
		return e.spellInt(n/100) + " hundred"
	}

	hi, lo := n/100, n%100
	if lo < 10 {
		return e.spellInt(hi) + " oh " + e.spellInt(lo)
	}

	return e.spellInt(hi) + " " + e.spellInt(lo)
}

func (e *Expander) spell(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return spellDigits(digits)
	}

	return e.spellInt(n)
}

func (e *Expander) spellInt(n int) string {
	if n == 0 {
		return "zero"
	}
	if n >= groupedFrom {
		return e.spellGroups(n)
	}

	words, err := e.cardinal(n)
	if err != nil {
		return spellDigits(strconv.Itoa(n))
	}

	words = cleanWords(words)
	if words == "" {
		return spellDigits(strconv.Itoa(n))
	}

	return words
}

// spellGroups spells n one three-digit group at a time with its scale
// word, so the cardinal func only ever sees values below 1000.
func (e *Expander) spellGroups(n int) string {
	orig := n

	var groups []string
	for scale := 0; n > 0; scale++ {
		g := n % 1000
		n /= 1000
		if g == 0 {
			continue
		}

		words, err := e.cardinal(g)
		if err != nil {
			return spellDigits(strconv.Itoa(orig))
		}
		words = cleanWords(words)
		if words == "" {
			return spellDigits(strconv.Itoa(orig))
		}
		if scaleWords[scale] != "" {
			words += " " + scaleWords[scale]
		}
		groups = append(groups, words)
	}

	slices.Reverse(groups)

	return strings.Join(groups, " ")
}

// cleanWords lowercases, splits hyphenated tens and drops "and" so every
// speller yields the same surface form.
func cleanWords(s string) string {
	fields := strings.Fields(strings.NewReplacer("-", " ", ",", " ").Replace(strings.ToLower(s)))

	out := fields[:0]
	for _, f := range fields {
		if f != "and" {
			out = append(out, f)
		}
	}

	return strings.Join(out, " ")
}
