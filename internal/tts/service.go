// Package tts wires configuration into a ready-to-use text front end.
package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-ttstokenizer/internal/config"
	"github.com/example/go-ttstokenizer/internal/phonetic"
	"github.com/example/go-ttstokenizer/internal/text"
	"github.com/example/go-ttstokenizer/internal/tokenizer"
)

// ErrNoSymbols is returned by Symbolize for backends without a symbol
// stage, such as SentencePiece.
var ErrNoSymbols = errors.New("backend does not produce phoneme symbols")

type vocabularyReporter interface {
	HasVocabulary() bool
}

type Service struct {
	normalizer *text.Normalizer
	encoder    tokenizer.Tokenizer
	symbolizer tokenizer.Symbolizer
	backend    string
	workers    int
}

// NewService builds the tokenizer selected by cfg.Tokenizer.Backend. An
// empty cfg.Paths.TokensPath yields a symbolize-only service for the
// phoneme backends.
func NewService(cfg config.Config) (*Service, error) {
	backend, err := config.NormalizeBackend(cfg.Tokenizer.Backend)
	if err != nil {
		return nil, err
	}

	norm := text.New()

	if backend == config.BackendSentencePiece {
		sp, err := tokenizer.NewSentencePieceTokenizer(cfg.Paths.TokenizerModel, norm)
		if err != nil {
			return nil, err
		}

		svc := NewServiceFrom(sp, norm, cfg.Server.Workers)
		svc.backend = backend

		return svc, nil
	}

	var conv phonetic.Converter
	switch backend {
	case config.BackendGoruut:
		conv = phonetic.NewGoruut(cfg.Tokenizer.Language)
	default:
		lex, err := phonetic.LoadLexicon(cfg.Paths.LexiconPath)
		if err != nil {
			return nil, err
		}
		conv = lex
	}

	var tokens []string
	if cfg.Paths.TokensPath != "" {
		if tokens, err = tokenizer.LoadTokenList(cfg.Paths.TokensPath); err != nil {
			return nil, err
		}
	}

	tok, err := tokenizer.NewPhonemeTokenizer(conv,
		tokenizer.WithTokens(tokens),
		tokenizer.WithNoSpace(cfg.Tokenizer.NoSpace),
		tokenizer.WithNormalizer(norm),
	)
	if err != nil {
		return nil, fmt.Errorf("tokens %q: %w", cfg.Paths.TokensPath, err)
	}

	svc := NewServiceFrom(tok, norm, cfg.Server.Workers)
	svc.backend = backend

	return svc, nil
}

// NewServiceFrom builds a Service from constructed parts. tok is also used
// for Symbolize when it implements tokenizer.Symbolizer. A nil norm falls
// back to text.New().
func NewServiceFrom(tok tokenizer.Tokenizer, norm *text.Normalizer, workers int) *Service {
	if norm == nil {
		norm = text.New()
	}

	s := &Service{
		normalizer: norm,
		encoder:    tok,
		backend:    "custom",
		workers:    workers,
	}
	if sym, ok := tok.(tokenizer.Symbolizer); ok {
		s.symbolizer = sym
	}

	return s
}

// Backend returns the canonical backend name.
func (s *Service) Backend() string { return s.backend }

// HasVocabulary reports whether Tokenize can produce ids.
func (s *Service) HasVocabulary() bool {
	if vr, ok := s.encoder.(vocabularyReporter); ok {
		return vr.HasVocabulary()
	}

	return true
}

func (s *Service) Normalize(input string) (string, error) {
	return s.normalizer.Normalize(input)
}

func (s *Service) Symbolize(input string) ([]string, error) {
	if s.symbolizer == nil {
		return nil, ErrNoSymbols
	}

	return s.symbolizer.Symbolize(input)
}

func (s *Service) Tokenize(input string) ([]int64, error) {
	return s.encoder.Encode(input)
}

// TokenizeBatch tokenizes texts concurrently, bounded by the configured
// worker count.
func (s *Service) TokenizeBatch(ctx context.Context, texts []string) ([][]int64, error) {
	return tokenizer.TokenizeBatch(ctx, s.encoder, texts, s.workers)
}

// SymbolizeBatch symbolizes texts concurrently, bounded by the configured
// worker count.
func (s *Service) SymbolizeBatch(ctx context.Context, texts []string) ([][]string, error) {
	if s.symbolizer == nil {
		return nil, ErrNoSymbols
	}

	return tokenizer.SymbolizeBatch(ctx, s.symbolizer, texts, s.workers)
}

// TokenizeChunks splits input into sentence groups of at most maxTokens ids
// each and tokenizes them.
func (s *Service) TokenizeChunks(input string, maxTokens int) ([]text.TokenChunk, error) {
	return text.ChunkByTokens(input, s.encoder, maxTokens)
}
