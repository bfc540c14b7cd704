package tokenizer

import (
	"errors"
	"fmt"
	"os"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"

	"github.com/example/go-ttstokenizer/internal/text"
)

// ErrEmptyPath is returned when NewSentencePieceTokenizer is called with an empty path.
var ErrEmptyPath = errors.New("tokenizer model path must not be empty")

// SentencePieceTokenizer implements Tokenizer with a pure-Go UNIGRAM
// SentencePiece model. Input is normalized first when a Normalizer is set.
type SentencePieceTokenizer struct {
	proc       gosp.Sentencepiece
	normalizer *text.Normalizer
}

// NewSentencePieceTokenizer loads a SentencePiece model from the given path.
// norm may be nil to encode text as given.
func NewSentencePieceTokenizer(modelPath string, norm *text.Normalizer) (*SentencePieceTokenizer, error) {
	if modelPath == "" {
		return nil, ErrEmptyPath
	}

	proc, err := gosp.NewSentencepieceFromFile(modelPath, false)
	if err != nil {
		return nil, fmt.Errorf("load sentencepiece model %q: %w", modelPath, err)
	}

	return &SentencePieceTokenizer{proc: proc, normalizer: norm}, nil
}

// NewSentencePieceTokenizerFromBytes loads a model from raw bytes. The
// upstream library only reads files, so the bytes go through a temp file.
func NewSentencePieceTokenizerFromBytes(data []byte, norm *text.Normalizer) (*SentencePieceTokenizer, error) {
	if len(data) == 0 {
		return nil, errors.New("tokenizer model data must not be empty")
	}

	f, err := os.CreateTemp("", "sp-*.model")
	if err != nil {
		return nil, fmt.Errorf("create temp sentencepiece file: %w", err)
	}

	defer func() { _ = os.Remove(f.Name()) }() // best-effort temp file cleanup

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write tokenizer model bytes: %w", err)
	}

	if err = f.Close(); err != nil {
		return nil, fmt.Errorf("close tokenizer temp file: %w", err)
	}

	return NewSentencePieceTokenizer(f.Name(), norm)
}

// Encode normalizes text and returns SentencePiece token ids as int64.
func (t *SentencePieceTokenizer) Encode(s string) ([]int64, error) {
	if t.normalizer != nil {
		var err error
		if s, err = t.normalizer.Normalize(s); err != nil {
			return nil, err
		}
	}

	if s == "" {
		return []int64{}, nil
	}

	ids := t.proc.TokenizeToIDs(s)

	result := make([]int64, len(ids))
	for i, id := range ids {
		result[i] = int64(id)
	}

	return result, nil
}
