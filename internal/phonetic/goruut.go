package phonetic

import (
	"strings"
	"sync"

	"github.com/neurlang/goruut/lib"
	"github.com/neurlang/goruut/models/requests"
)

// DefaultLanguage is the goruut language used when none is configured.
const DefaultLanguage = "English"

// Goruut converts text to IPA with the goruut phonemizer. Each IPA rune is
// one symbol.
type Goruut struct {
	mu       sync.Mutex
	p        *lib.Phonemizer
	language string
}

// NewGoruut returns a converter for language ("English" when empty).
func NewGoruut(language string) *Goruut {
	if language == "" {
		language = DefaultLanguage
	}

	return &Goruut{
		p:        lib.NewPhonemizer(nil),
		language: language,
	}
}

// Convert implements Converter.
func (g *Goruut) Convert(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	g.mu.Lock()
	resp := g.p.Sentence(requests.PhonemizeSentence{
		Language: g.language,
		Sentence: text,
	})
	g.mu.Unlock()

	var out []string
	for i, word := range resp.Words {
		if i > 0 {
			out = append(out, Separator)
		}
		for _, r := range word.Phonetic {
			out = append(out, string(r))
		}
	}

	return out, nil
}
