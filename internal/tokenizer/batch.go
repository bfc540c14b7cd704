package tokenizer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Symbolizer produces phoneme symbols for text.
type Symbolizer interface {
	Symbolize(text string) ([]string, error)
}

// TokenizeBatch encodes texts concurrently with at most workers goroutines
// (unbounded when workers <= 0). Results keep input order. The first error
// cancels the remaining work and is returned alone.
func TokenizeBatch(ctx context.Context, tok Tokenizer, texts []string, workers int) ([][]int64, error) {
	return mapBatch(ctx, texts, workers, tok.Encode)
}

// SymbolizeBatch is TokenizeBatch for symbol output.
func SymbolizeBatch(ctx context.Context, s Symbolizer, texts []string, workers int) ([][]string, error) {
	return mapBatch(ctx, texts, workers, s.Symbolize)
}

func mapBatch[T any](ctx context.Context, texts []string, workers int, fn func(string) (T, error)) ([]T, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	out := make([]T, len(texts))
	for i, s := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			v, err := fn(s)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			out[i] = v

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
