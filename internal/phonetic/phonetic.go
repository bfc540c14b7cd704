// Package phonetic provides grapheme-to-phoneme converters that turn
// normalized text into ordered phoneme symbol sequences.
package phonetic

// Separator is the symbol converters emit between tokens to mark a word
// boundary.
const Separator = " "

// Converter turns normalized text into phoneme symbols, including
// Separator symbols at word boundaries. Implementations must be
// deterministic and safe for concurrent use.
type Converter interface {
	Convert(text string) ([]string, error)
}

// Func adapts an ordinary function to the Converter interface.
type Func func(text string) ([]string, error)

// Convert implements Converter.
func (f Func) Convert(text string) ([]string, error) {
	return f(text)
}
