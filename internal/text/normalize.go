// Package text implements the English text normalization pipeline that turns
// raw input into the canonical uppercase ASCII form expected by the
// grapheme-to-phoneme converters.
package text

import (
	"fmt"
	"strings"

	"github.com/example/go-ttstokenizer/internal/numerals"
)

// Transliterator folds arbitrary Unicode text to a best-effort ASCII
// approximation.
type Transliterator interface {
	Fold(s string) string
}

// NumeralExpander spells out digit sequences, currency amounts and ordinals
// as words.
type NumeralExpander interface {
	Expand(s string) (string, error)
}

// Normalizer reduces text to canonical form. It is immutable after New and
// safe for concurrent use.
type Normalizer struct {
	stages []stage
}

type stage struct {
	name string
	fn   func(string) (string, error)
}

type options struct {
	translit      Transliterator
	numerals      NumeralExpander
	abbreviations []AbbreviationRule
}

// Option configures a Normalizer.
type Option func(*options)

// WithTransliterator replaces the default ASCIIFolder.
func WithTransliterator(t Transliterator) Option {
	return func(o *options) { o.translit = t }
}

// WithNumeralExpander replaces the default numerals.Expander.
func WithNumeralExpander(e NumeralExpander) Option {
	return func(o *options) { o.numerals = e }
}

// WithAbbreviations replaces the default abbreviation table. The slice is
// copied.
func WithAbbreviations(rules []AbbreviationRule) Option {
	return func(o *options) { o.abbreviations = append([]AbbreviationRule(nil), rules...) }
}

// New builds a Normalizer. Without options it uses ASCIIFolder,
// numerals.New() and DefaultAbbreviations().
func New(opts ...Option) *Normalizer {
	o := options{
		translit:      ASCIIFolder{},
		numerals:      numerals.New(),
		abbreviations: DefaultAbbreviations(),
	}
	for _, fn := range opts {
		fn(&o)
	}

	rules := compileAbbreviations(o.abbreviations)

	// Order is load-bearing: abbreviation patterns assume lowercase input,
	// and the converters expect uppercase with single spaces.
	return &Normalizer{stages: []stage{
		{name: "ascii fold", fn: total(o.translit.Fold)},
		{name: "lowercase", fn: total(strings.ToLower)},
		{name: "expand numerals", fn: o.numerals.Expand},
		{name: "expand abbreviations", fn: total(func(s string) string { return expandCompiled(s, rules) })},
		{name: "expand symbols", fn: total(ExpandSymbols)},
		{name: "uppercase", fn: total(strings.ToUpper)},
		{name: "collapse whitespace", fn: total(CollapseWhitespace)},
	}}
}

// Normalize runs every stage in order. Empty input yields empty output. An
// error is returned only when a configured collaborator fails; no partial
// result is returned in that case.
func (n *Normalizer) Normalize(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	for _, st := range n.stages {
		out, err := st.fn(s)
		if err != nil {
			return "", fmt.Errorf("normalize: %s: %w", st.name, err)
		}
		s = out
	}

	return s, nil
}

// CollapseWhitespace replaces every run of whitespace with a single ASCII
// space and drops leading and trailing whitespace.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func total(fn func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return fn(s), nil }
}
