// Package tokenizer turns text into model-ready token ids.
//
// PhonemeTokenizer is the main implementation: it normalizes text, converts
// it to phoneme symbols through a phonetic.Converter and maps the symbols to
// ids with a fixed Vocabulary. SentencePieceTokenizer encodes normalized
// graphemes directly for models trained on subword units.
package tokenizer

// Tokenizer encodes text into token ids.
type Tokenizer interface {
	// Encode tokenizes text and returns token ids.
	Encode(text string) ([]int64, error)
}
