package tokenizer

import (
	"errors"
	"fmt"

	"github.com/example/go-ttstokenizer/internal/phonetic"
	"github.com/example/go-ttstokenizer/internal/text"
)

var (
	// ErrNoVocabulary is returned by Tokenize when the tokenizer was built
	// without a token list. Use Symbolize instead.
	ErrNoVocabulary = errors.New("tokenizer has no vocabulary")
	// ErrNilConverter is returned by NewPhonemeTokenizer for a nil converter.
	ErrNilConverter = errors.New("phonetic converter must not be nil")
)

// UnknownSymbolError reports a converter symbol that has no vocabulary
// entry. Index is the symbol's position after separator filtering.
type UnknownSymbolError struct {
	Symbol string
	Index  int
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q at position %d is not in the vocabulary", e.Symbol, e.Index)
}

type options struct {
	tokens     []string
	nospace    bool
	normalizer *text.Normalizer
}

// Option configures a PhonemeTokenizer.
type Option func(*options)

// WithTokens sets the ordered token list the vocabulary is built from.
func WithTokens(tokens []string) Option {
	return func(o *options) { o.tokens = tokens }
}

// WithNoSpace controls whether separator symbols are dropped. Default true.
func WithNoSpace(nospace bool) Option {
	return func(o *options) { o.nospace = nospace }
}

// WithNormalizer replaces the default text.New() normalizer.
func WithNormalizer(n *text.Normalizer) Option {
	return func(o *options) { o.normalizer = n }
}

// PhonemeTokenizer normalizes text, converts it to phoneme symbols and maps
// them to ids. It holds no per-call state and is safe for concurrent use.
type PhonemeTokenizer struct {
	normalizer *text.Normalizer
	converter  phonetic.Converter
	vocab      Vocabulary
	nospace    bool
}

// NewPhonemeTokenizer builds a tokenizer around conv. It fails if conv is
// nil or the token list contains duplicates.
func NewPhonemeTokenizer(conv phonetic.Converter, opts ...Option) (*PhonemeTokenizer, error) {
	if conv == nil {
		return nil, ErrNilConverter
	}

	o := options{nospace: true}
	for _, fn := range opts {
		fn(&o)
	}
	if o.normalizer == nil {
		o.normalizer = text.New()
	}

	vocab, err := BuildVocabulary(o.tokens)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}

	return &PhonemeTokenizer{
		normalizer: o.normalizer,
		converter:  conv,
		vocab:      vocab,
		nospace:    o.nospace,
	}, nil
}

// HasVocabulary reports whether Tokenize can produce ids.
func (t *PhonemeTokenizer) HasVocabulary() bool { return t.vocab.Len() > 0 }

// Vocabulary returns the configured vocabulary.
func (t *PhonemeTokenizer) Vocabulary() Vocabulary { return t.vocab }

// Normalize runs only the text normalization stage.
func (t *PhonemeTokenizer) Normalize(s string) (string, error) {
	return t.normalizer.Normalize(s)
}

// Symbolize returns the phoneme symbols for s, without separators when
// nospace is set.
func (t *PhonemeTokenizer) Symbolize(s string) ([]string, error) {
	normalized, err := t.normalizer.Normalize(s)
	if err != nil {
		return nil, err
	}

	symbols, err := t.converter.Convert(normalized)
	if err != nil {
		return nil, fmt.Errorf("phonetic conversion: %w", err)
	}

	if !t.nospace {
		return symbols, nil
	}

	kept := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if sym != phonetic.Separator {
			kept = append(kept, sym)
		}
	}

	return kept, nil
}

// Tokenize returns the vocabulary ids for s. It fails with
// ErrNoVocabulary when no token list was configured and with
// *UnknownSymbolError when the converter emits a symbol the vocabulary does
// not contain.
func (t *PhonemeTokenizer) Tokenize(s string) ([]int64, error) {
	if !t.HasVocabulary() {
		return nil, ErrNoVocabulary
	}

	symbols, err := t.Symbolize(s)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(symbols))
	for i, sym := range symbols {
		id, ok := t.vocab.ID(sym)
		if !ok {
			return nil, &UnknownSymbolError{Symbol: sym, Index: i}
		}
		ids[i] = id
	}

	return ids, nil
}

// Encode implements Tokenizer.
func (t *PhonemeTokenizer) Encode(s string) ([]int64, error) {
	return t.Tokenize(s)
}
