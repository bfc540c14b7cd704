package config

import (
	"fmt"
	"strings"
)

const (
	BackendLexicon       = "lexicon"
	BackendGoruut        = "goruut"
	BackendSentencePiece = "sentencepiece"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendLexicon
	}
	switch backend {
	case BackendLexicon, BackendGoruut, BackendSentencePiece:
		return backend, nil
	case "cmudict":
		return BackendLexicon, nil
	case "ipa":
		return BackendGoruut, nil
	case "spm", "sp":
		return BackendSentencePiece, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s|%s)",
			raw,
			BackendLexicon,
			BackendGoruut,
			BackendSentencePiece,
		)
	}
}
