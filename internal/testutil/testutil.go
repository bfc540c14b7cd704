// Package testutil provides shared helpers for package tests.
//
// The Require* helpers call t.Skip with a clear human-readable reason when
// the named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
//
// Typical usage:
//
//	func TestRealModel(t *testing.T) {
//	    path := testutil.RequireTokenizerModel(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ModelEnv names the variable that overrides the SentencePiece model lookup.
const ModelEnv = "TTSTOK_TOKENIZER_MODEL"

// RequireFile skips the test if path does not exist.
func RequireFile(tb testing.TB, path string) {
	tb.Helper()

	if _, err := os.Stat(path); err != nil {
		tb.Skipf("required file %q not available: %v", path, err)
	}
}

// FindUp walks from the working directory towards the filesystem root and
// returns the first existing path ending in rel. It skips the test when no
// ancestor contains rel.
func FindUp(tb testing.TB, rel string) string {
	tb.Helper()

	dir, err := filepath.Abs(".")
	if err != nil {
		tb.Fatalf("abs path: %v", err)
	}

	for {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	tb.Skipf("%s not found in any parent directory", rel)

	return ""
}

// RequireTokenizerModel returns a SentencePiece model path from ModelEnv or
// models/tokenizer.model, skipping when neither exists.
func RequireTokenizerModel(tb testing.TB) string {
	tb.Helper()

	if p := os.Getenv(ModelEnv); p != "" {
		RequireFile(tb, p)
		return p
	}

	return FindUp(tb, filepath.Join("models", "tokenizer.model"))
}

// WriteTokenList writes tokens one per line into dir and returns the path.
func WriteTokenList(tb testing.TB, dir string, tokens []string) string {
	tb.Helper()

	path := filepath.Join(dir, "tokens.txt")
	if err := os.WriteFile(path, []byte(strings.Join(tokens, "\n")+"\n"), 0o600); err != nil {
		tb.Fatalf("write token list: %v", err)
	}

	return path
}
