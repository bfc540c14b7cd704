package text

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyText is returned by ChunkByTokens for empty or whitespace-only
// input.
var ErrEmptyText = errors.New("text is empty")

// Tokenizer is the minimal interface ChunkByTokens needs. It is satisfied by
// the tokenizers in the tokenizer package.
type Tokenizer interface {
	Encode(text string) ([]int64, error)
}

// TokenChunk is a group of sentences and its token ids.
type TokenChunk struct {
	Text     string  `json:"text"`
	TokenIDs []int64 `json:"ids"`
}

// ChunkByTokens greedily groups sentences so that each chunk encodes to at
// most maxTokens ids. A single sentence over budget is kept intact.
// maxTokens <= 0 encodes the whole input as one chunk.
func ChunkByTokens(input string, tok Tokenizer, maxTokens int) ([]TokenChunk, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyText
	}

	sentences := Sentences(input)
	if maxTokens <= 0 {
		sentences = []string{strings.Join(sentences, " ")}
	}

	var (
		chunks  []TokenChunk
		pending TokenChunk
	)
	for _, sent := range sentences {
		candidate := sent
		if pending.Text != "" {
			candidate = pending.Text + " " + sent
		}

		ids, err := tok.Encode(candidate)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", candidate, err)
		}

		if pending.Text == "" || maxTokens <= 0 || len(ids) <= maxTokens {
			pending = TokenChunk{Text: candidate, TokenIDs: ids}
			continue
		}

		chunks = append(chunks, pending)

		ids, err = tok.Encode(sent)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", sent, err)
		}
		pending = TokenChunk{Text: sent, TokenIDs: ids}
	}
	if pending.Text != "" {
		chunks = append(chunks, pending)
	}

	return chunks, nil
}
