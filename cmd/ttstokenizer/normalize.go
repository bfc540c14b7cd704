package main

import (
	"fmt"

	"github.com/example/go-ttstokenizer/internal/text"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Print the normalized form of text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireConfig(); err != nil {
				return err
			}

			s, err := readInput(cmd, input, args)
			if err != nil {
				return err
			}

			// Normalization needs no models, so no service is built.
			out, err := text.New().Normalize(s)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Input text (default: arguments or stdin)")

	return cmd
}
