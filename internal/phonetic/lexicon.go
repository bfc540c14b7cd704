package phonetic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

// ErrEmptyLexicon is returned when a pronouncing dictionary has no entries.
var ErrEmptyLexicon = errors.New("lexicon has no entries")

// UnknownWordError reports a word that is neither in the lexicon nor
// spellable letter by letter.
type UnknownWordError struct {
	Word string
}

func (e *UnknownWordError) Error() string {
	return fmt.Sprintf("word %q not in lexicon", e.Word)
}

// Lexicon converts text with a CMUdict-style pronouncing dictionary. It is
// read-only after construction.
type Lexicon struct {
	entries map[string][]string
}

// NewLexicon builds a Lexicon from word -> phones. Keys are uppercased and
// the phone slices copied.
func NewLexicon(entries map[string][]string) *Lexicon {
	l := &Lexicon{entries: make(map[string][]string, len(entries))}
	for w, phones := range entries {
		l.entries[strings.ToUpper(w)] = append([]string(nil), phones...)
	}

	return l
}

// LoadLexicon reads a CMUdict-format file from path.
func LoadLexicon(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer func() { _ = f.Close() }()

	lex, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("parse lexicon %q: %w", path, err)
	}

	return lex, nil
}

// ParseLexicon reads "WORD  PH1 PH2 ..." lines. Lines starting with ";;;"
// are comments. Alternate pronunciations ("WORD(2)") are skipped; the
// first pronunciation wins.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	l := &Lexicon{entries: make(map[string][]string)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++

		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, ";;;") {
			continue
		}

		fields := strings.Fields(raw)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: want word and phones, got %q", line, raw)
		}

		word := strings.ToUpper(fields[0])
		if i := strings.IndexByte(word, '('); i > 0 && strings.HasSuffix(word, ")") {
			continue
		}
		if _, dup := l.entries[word]; dup {
			continue
		}

		l.entries[word] = fields[1:]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	if len(l.entries) == 0 {
		return nil, ErrEmptyLexicon
	}

	return l, nil
}

// Len returns the number of words in the lexicon.
func (l *Lexicon) Len() int { return len(l.entries) }

// Symbols returns every distinct phone used by the lexicon, sorted.
func (l *Lexicon) Symbols() []string {
	seen := make(map[string]struct{})
	for _, phones := range l.entries {
		for _, p := range phones {
			seen[p] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Punctuation lists the marks that survive normalization and reach Convert,
// which passes each through as a symbol of its own.
var Punctuation = []string{",", ".", "!", "?", "'"}

// Lookup returns a copy of the phones for word.
func (l *Lexicon) Lookup(word string) ([]string, bool) {
	phones, ok := l.entries[strings.ToUpper(word)]
	if !ok {
		return nil, false
	}

	return append([]string(nil), phones...), true
}

// Convert implements Converter. Every word and every punctuation mark
// becomes one token; tokens are joined by Separator. Words missing from the
// lexicon are spelled letter by letter when possible.
func (l *Lexicon) Convert(text string) ([]string, error) {
	tokens := splitTokens(text)

	out := make([]string, 0, len(tokens)*4)
	for i, tok := range tokens {
		if i > 0 {
			out = append(out, Separator)
		}

		if !isWord(tok) {
			out = append(out, tok)
			continue
		}

		phones, err := l.pronounce(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, phones...)
	}

	return out, nil
}

func (l *Lexicon) pronounce(word string) ([]string, error) {
	word = strings.ToUpper(word)
	if phones, ok := l.entries[word]; ok {
		return phones, nil
	}

	trimmed := strings.Trim(word, "'")
	if phones, ok := l.entries[trimmed]; ok {
		return phones, nil
	}

	var spelled []string
	for _, r := range trimmed {
		if r == '\'' {
			continue
		}
		phones, ok := l.entries[string(r)]
		if !ok {
			return nil, &UnknownWordError{Word: word}
		}
		spelled = append(spelled, phones...)
	}
	if len(spelled) == 0 {
		return nil, &UnknownWordError{Word: word}
	}

	return spelled, nil
}

// splitTokens splits on whitespace and emits every other non-word rune as
// a token of its own.
func splitTokens(s string) []string {
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case isWordRune(r):
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\''
}

// isWord reports whether tok contains at least one letter or digit.
func isWord(tok string) bool {
	for _, r := range tok {
		if isWordRune(r) && r != '\'' {
			return true
		}
	}

	return false
}
