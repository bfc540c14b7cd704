package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/go-ttstokenizer/internal/phonetic"
	"github.com/example/go-ttstokenizer/internal/tts"
	"github.com/spf13/cobra"
)

// boundaryMarker stands in for the word separator symbol in plain output,
// where symbols are themselves joined by spaces.
const boundaryMarker = "|"

func newSymbolizeCmd() *cobra.Command {
	var (
		input  string
		asJSON bool
		lines  bool
	)

	cmd := &cobra.Command{
		Use:   "symbolize [text...]",
		Short: "Print the phoneme symbols for text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			s, err := readInput(cmd, input, args)
			if err != nil {
				return err
			}

			// Symbols do not need a token list.
			cfg.Paths.TokensPath = ""
			svc, err := tts.NewService(cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if lines {
				batch, err := svc.SymbolizeBatch(cmd.Context(), readLines(s))
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(w).Encode(batch)
				}
				for _, symbols := range batch {
					if _, err := fmt.Fprintln(w, formatSymbols(symbols)); err != nil {
						return err
					}
				}
				return nil
			}

			symbols, err := svc.Symbolize(s)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(w).Encode(symbols)
			}

			_, err = fmt.Fprintln(w, formatSymbols(symbols))
			return err
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Input text (default: arguments or stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print symbols as a JSON array (separators kept as \" \")")
	cmd.Flags().BoolVar(&lines, "lines", false, "Symbolize each input line separately and concurrently")

	return cmd
}

// formatSymbols joins symbols with spaces, printing word separators as
// boundaryMarker.
func formatSymbols(symbols []string) string {
	out := make([]string, len(symbols))
	for i, sym := range symbols {
		if sym == phonetic.Separator {
			sym = boundaryMarker
		}
		out[i] = sym
	}
	return strings.Join(out, " ")
}
