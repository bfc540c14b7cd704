package text

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIFolder is the default Transliterator. Compatibility decomposition
// strips accents and ligatures first; whatever is still outside ASCII is
// transliterated by unidecode.
type ASCIIFolder struct{}

// transform chains carry state, so each goroutine takes its own.
var foldChainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// Fold implements Transliterator.
func (ASCIIFolder) Fold(s string) string {
	if isASCII(s) {
		return s
	}

	tr := foldChainPool.Get().(transform.Transformer)
	decomposed, _, err := transform.String(tr, s)
	tr.Reset()
	foldChainPool.Put(tr)

	if err != nil {
		decomposed = s
	}
	if isASCII(decomposed) {
		return decomposed
	}

	return unidecode.Unidecode(decomposed)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
