// Package stageprof times the front-end stages separately, with pprof labels
// so a CPU profile can be split by stage.
package stageprof

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"
)

// Pipeline is the part of the tokenization service being profiled.
type Pipeline interface {
	Normalize(text string) (string, error)
	Symbolize(text string) ([]string, error)
	Tokenize(text string) ([]int64, error)
	HasVocabulary() bool
}

// Options control a profiling session.
type Options struct {
	Runs   int
	Warmup int
	// CPUProfile, when set, receives a pprof CPU profile of the measured runs.
	CPUProfile string
	// SkipSymbolize is set for backends that never expose symbols.
	SkipSymbolize bool
}

// Report holds per-stage averages over the measured runs.
type Report struct {
	Input     string
	Runs      int
	Warmup    int
	Symbols   int
	Tokens    int
	Normalize time.Duration
	Symbolize time.Duration
	Tokenize  time.Duration
}

type timings struct {
	normalize time.Duration
	symbolize time.Duration
	tokenize  time.Duration
	symbols   int
	tokens    int
}

// Run profiles p on input.
func Run(ctx context.Context, p Pipeline, input string, opts Options) (Report, error) {
	if opts.Runs < 1 {
		return Report{}, errors.New("runs must be >= 1")
	}

	for i := range opts.Warmup {
		if _, err := runOnce(ctx, p, input, opts); err != nil {
			return Report{}, fmt.Errorf("warmup run %d: %w", i+1, err)
		}
	}

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return Report{}, fmt.Errorf("create cpuprofile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return Report{}, fmt.Errorf("start cpuprofile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	var agg timings
	for i := range opts.Runs {
		t, err := runOnce(ctx, p, input, opts)
		if err != nil {
			return Report{}, fmt.Errorf("profiled run %d: %w", i+1, err)
		}

		agg.normalize += t.normalize
		agg.symbolize += t.symbolize
		agg.tokenize += t.tokenize
		agg.symbols = t.symbols
		agg.tokens = t.tokens
	}

	n := time.Duration(opts.Runs)

	return Report{
		Input:     input,
		Runs:      opts.Runs,
		Warmup:    opts.Warmup,
		Symbols:   agg.symbols,
		Tokens:    agg.tokens,
		Normalize: agg.normalize / n,
		Symbolize: agg.symbolize / n,
		Tokenize:  agg.tokenize / n,
	}, nil
}

func runOnce(ctx context.Context, p Pipeline, input string, opts Options) (timings, error) {
	var (
		out timings
		err error
	)

	pprof.Do(ctx, pprof.Labels("stage", "normalize"), func(context.Context) {
		start := time.Now()
		_, err = p.Normalize(input)
		out.normalize = time.Since(start)
	})
	if err != nil {
		return out, fmt.Errorf("normalize: %w", err)
	}

	if !opts.SkipSymbolize {
		pprof.Do(ctx, pprof.Labels("stage", "symbolize"), func(context.Context) {
			var symbols []string
			start := time.Now()
			symbols, err = p.Symbolize(input)
			out.symbolize = time.Since(start)
			out.symbols = len(symbols)
		})
		if err != nil {
			return out, fmt.Errorf("symbolize: %w", err)
		}
	}

	if p.HasVocabulary() {
		pprof.Do(ctx, pprof.Labels("stage", "tokenize"), func(context.Context) {
			var ids []int64
			start := time.Now()
			ids, err = p.Tokenize(input)
			out.tokenize = time.Since(start)
			out.tokens = len(ids)
		})
		if err != nil {
			return out, fmt.Errorf("tokenize: %w", err)
		}
	}

	return out, nil
}

// Write prints the report as key: value lines. Each stage includes the ones
// before it, so shares are relative to the slowest stage measured.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "text: %q\n", r.Input)
	fmt.Fprintf(w, "runs: %d (warmup %d)\n", r.Runs, r.Warmup)
	fmt.Fprintf(w, "symbols: %d\n", r.Symbols)
	fmt.Fprintf(w, "tokens: %d\n", r.Tokens)
	fmt.Fprintf(w, "avg_normalize_ms: %.3f\n", ms(r.Normalize))
	fmt.Fprintf(w, "avg_symbolize_ms: %.3f\n", ms(r.Symbolize))
	fmt.Fprintf(w, "avg_tokenize_ms: %.3f\n", ms(r.Tokenize))

	total := max(r.Normalize, r.Symbolize, r.Tokenize)
	if total > 0 {
		fmt.Fprintf(w, "share_normalize_pct: %.2f\n", 100*ms(r.Normalize)/ms(total))
		if r.Symbolize > 0 {
			fmt.Fprintf(w, "share_convert_pct: %.2f\n", 100*ms(r.Symbolize-r.Normalize)/ms(total))
		}
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
