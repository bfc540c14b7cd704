// Package doctor provides environment preflight checks for ttstokenizer.
package doctor

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-ttstokenizer/internal/config"
	"github.com/example/go-ttstokenizer/internal/phonetic"
	"github.com/example/go-ttstokenizer/internal/tokenizer"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// maxListed bounds how many missing symbols a coverage failure names.
const maxListed = 8

// Config holds the paths and injectable dependencies for each doctor check.
type Config struct {
	Backend        string
	TokensPath     string
	LexiconPath    string
	TokenizerModel string
	// KeepSeparators requires the word separator in the token list too.
	KeepSeparators bool
	// Tokenize, when set, runs Sample end to end as a smoke test.
	Tokenize func(text string) ([]int64, error)
	Sample   string
}

// FromConfig derives a doctor Config from application configuration.
func FromConfig(cfg config.Config) Config {
	return Config{
		Backend:        cfg.Tokenizer.Backend,
		TokensPath:     cfg.Paths.TokensPath,
		LexiconPath:    cfg.Paths.LexiconPath,
		TokenizerModel: cfg.Paths.TokenizerModel,
		KeepSeparators: !cfg.Tokenizer.NoSpace,
		Sample:         "Dr. Smith paid $5 on March 3rd, 1984.",
	}
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(w io.Writer, check string, err error) {
	r.failures = append(r.failures, fmt.Sprintf("%s: %v", check, err))
	fmt.Fprintf(w, "%s %s: %v\n", FailMark, check, err)
}

func pass(w io.Writer, check, detail string) {
	fmt.Fprintf(w, "%s %s: %s\n", PassMark, check, detail)
}

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- backend ----------------------------------------------------------
	backend, err := config.NormalizeBackend(cfg.Backend)
	if err != nil {
		res.fail(w, "backend", err)
		return res
	}
	pass(w, "backend", backend)

	if backend == config.BackendSentencePiece {
		// ---- sentencepiece model -------------------------------------------
		checkFile(&res, w, "tokenizer model", cfg.TokenizerModel)
	} else {
		vocab := checkTokens(&res, w, cfg.TokensPath)

		// ---- lexicon -------------------------------------------------------
		if backend == config.BackendLexicon {
			lex, err := phonetic.LoadLexicon(cfg.LexiconPath)
			if err != nil {
				res.fail(w, "lexicon", err)
			} else {
				pass(w, "lexicon", fmt.Sprintf("%s (%d entries)", cfg.LexiconPath, lex.Len()))
				if vocab.Len() > 0 {
					checkCoverage(&res, w, expectedSymbols(lex, cfg.KeepSeparators), vocab)
				}
			}
		}
	}

	// ---- smoke test -------------------------------------------------------
	if cfg.Tokenize != nil && cfg.Sample != "" {
		ids, err := cfg.Tokenize(cfg.Sample)
		if err != nil {
			res.fail(w, "sample tokenization", err)
		} else {
			pass(w, "sample tokenization", fmt.Sprintf("%d ids", len(ids)))
		}
	}

	return res
}

func checkFile(res *Result, w io.Writer, check, path string) {
	if path == "" {
		res.fail(w, check, fmt.Errorf("path not configured"))
		return
	}

	if _, err := os.Stat(path); err != nil {
		res.fail(w, check, err)
		return
	}

	pass(w, check, path)
}

// checkTokens loads the token list and builds the vocabulary. An empty path
// is not a failure: the phoneme backends still symbolize without one.
func checkTokens(res *Result, w io.Writer, path string) tokenizer.Vocabulary {
	if path == "" {
		pass(w, "token list", "not configured (symbolize only)")
		return tokenizer.Vocabulary{}
	}

	tokens, err := tokenizer.LoadTokenList(path)
	if err != nil {
		res.fail(w, "token list", err)
		return tokenizer.Vocabulary{}
	}

	vocab, err := tokenizer.BuildVocabulary(tokens)
	if err != nil {
		res.fail(w, "token list", err)
		return tokenizer.Vocabulary{}
	}

	pass(w, "token list", fmt.Sprintf("%s (%d tokens)", path, vocab.Len()))

	return vocab
}

// expectedSymbols lists every symbol the lexicon converter can emit. The
// separator counts only when it reaches id lookup.
func expectedSymbols(lex *phonetic.Lexicon, keepSeparators bool) []string {
	syms := append(lex.Symbols(), phonetic.Punctuation...)
	if keepSeparators {
		syms = append(syms, phonetic.Separator)
	}

	return syms
}

// checkCoverage fails when converter symbols are missing from the
// vocabulary, since any text using them would fail to tokenize.
func checkCoverage(res *Result, w io.Writer, symbols []string, vocab tokenizer.Vocabulary) {
	var missing []string
	for _, sym := range symbols {
		if _, ok := vocab.ID(sym); !ok {
			missing = append(missing, sym)
		}
	}

	if len(missing) == 0 {
		pass(w, "symbol coverage", fmt.Sprintf("all %d converter symbols in token list", len(symbols)))
		return
	}

	listed := missing
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	res.fail(w, "symbol coverage",
		fmt.Errorf("%d converter symbols missing from token list: %q", len(missing), listed))
}
