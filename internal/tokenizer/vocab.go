package tokenizer

import "fmt"

// DuplicateTokenError is returned by BuildVocabulary when a symbol appears
// more than once in the token list.
type DuplicateTokenError struct {
	Token  string
	First  int
	Second int
}

func (e *DuplicateTokenError) Error() string {
	return fmt.Sprintf("duplicate token %q at positions %d and %d", e.Token, e.First, e.Second)
}

// Vocabulary maps phoneme symbols to dense ids [0, Len()). The zero value
// is an empty vocabulary.
type Vocabulary struct {
	ids    map[string]int64
	tokens []string
}

// BuildVocabulary assigns each token its index in tokens. The list must not
// contain duplicates. An empty list yields an empty Vocabulary.
func BuildVocabulary(tokens []string) (Vocabulary, error) {
	if len(tokens) == 0 {
		return Vocabulary{}, nil
	}

	ids := make(map[string]int64, len(tokens))
	for i, tok := range tokens {
		if prev, dup := ids[tok]; dup {
			return Vocabulary{}, &DuplicateTokenError{Token: tok, First: int(prev), Second: i}
		}
		ids[tok] = int64(i)
	}

	return Vocabulary{
		ids:    ids,
		tokens: append([]string(nil), tokens...),
	}, nil
}

// ID returns the id of sym.
func (v Vocabulary) ID(sym string) (int64, bool) {
	id, ok := v.ids[sym]
	return id, ok
}

// Len returns the number of symbols.
func (v Vocabulary) Len() int { return len(v.tokens) }

// Tokens returns the symbols in id order.
func (v Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}
