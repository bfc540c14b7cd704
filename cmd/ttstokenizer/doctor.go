package main

import (
	"errors"
	"fmt"

	"github.com/example/go-ttstokenizer/internal/doctor"
	"github.com/example/go-ttstokenizer/internal/tts"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	var sample string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check token list, lexicon and model files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			dcfg := doctor.FromConfig(cfg)
			if sample != "" {
				dcfg.Sample = sample
			}

			// The sample check needs a working service; if one cannot be
			// built the file checks below say why.
			svc, svcErr := tts.NewService(cfg)
			if svcErr == nil && svc.HasVocabulary() {
				dcfg.Tokenize = svc.Tokenize
			}

			result := doctor.Run(dcfg, w)
			if svcErr != nil && !result.Failed() {
				result.AddFailure(fmt.Sprintf("service: %v", svcErr))
				_, _ = fmt.Fprintf(w, "%s service: %v\n", doctor.FailMark, svcErr)
			}

			if result.Failed() {
				return errors.New("doctor checks failed")
			}

			_, err = fmt.Fprintln(w, "all checks passed")
			return err
		},
	}

	cmd.Flags().StringVar(&sample, "sample", "", "Text to tokenize as a smoke test")

	return cmd
}
