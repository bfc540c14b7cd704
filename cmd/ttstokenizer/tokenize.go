package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-ttstokenizer/internal/text"
	"github.com/example/go-ttstokenizer/internal/tts"
	"github.com/spf13/cobra"
)

func newTokenizeCmd() *cobra.Command {
	var (
		input       string
		asJSON      bool
		lines       bool
		chunkTokens int
		chunkChars  int
	)

	cmd := &cobra.Command{
		Use:   "tokenize [text...]",
		Short: "Print the token ids for text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if countSet(lines, chunkTokens > 0, chunkChars > 0) > 1 {
				return fmt.Errorf("--lines, --chunk-tokens and --max-chunk-chars are mutually exclusive")
			}

			s, err := readInput(cmd, input, args)
			if err != nil {
				return err
			}

			svc, err := tts.NewService(cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			switch {
			case chunkTokens > 0:
				chunks, err := svc.TokenizeChunks(s, chunkTokens)
				if err != nil {
					return err
				}
				return writeChunks(w, asJSON, chunks)

			case chunkChars > 0:
				texts := text.ChunkBySentence(s, chunkChars)
				ids, err := svc.TokenizeBatch(cmd.Context(), texts)
				if err != nil {
					return err
				}
				chunks := make([]text.TokenChunk, len(texts))
				for i := range texts {
					chunks[i] = text.TokenChunk{Text: texts[i], TokenIDs: ids[i]}
				}
				return writeChunks(w, asJSON, chunks)

			case lines:
				ids, err := svc.TokenizeBatch(cmd.Context(), readLines(s))
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(w).Encode(ids)
				}
				return writeIDs(w, ids...)

			default:
				ids, err := svc.Tokenize(s)
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(w).Encode(ids)
				}
				return writeIDs(w, ids)
			}
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Input text (default: arguments or stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print ids as JSON")
	cmd.Flags().BoolVar(&lines, "lines", false, "Tokenize each input line separately and concurrently")
	cmd.Flags().IntVar(&chunkTokens, "chunk-tokens", 0, "Split into sentence chunks of at most this many ids (0 = off)")
	cmd.Flags().IntVar(&chunkChars, "max-chunk-chars", 0, "Split into sentence chunks of at most this many bytes (0 = off)")

	return cmd
}

// writeChunks prints one "text<TAB>ids" line per chunk, or a JSON array.
func writeChunks(w io.Writer, asJSON bool, chunks []text.TokenChunk) error {
	if asJSON {
		return json.NewEncoder(w).Encode(chunks)
	}

	for _, c := range chunks {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", c.Text, formatIDs(c.TokenIDs)); err != nil {
			return err
		}
	}
	return nil
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// writeIDs prints one line of space-separated ids per sequence.
func writeIDs(w io.Writer, seqs ...[]int64) error {
	for _, ids := range seqs {
		if _, err := fmt.Fprintln(w, formatIDs(ids)); err != nil {
			return err
		}
	}
	return nil
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, " ")
}
