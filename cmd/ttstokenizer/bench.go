package main

import (
	"fmt"

	"github.com/example/go-ttstokenizer/internal/bench"
	"github.com/example/go-ttstokenizer/internal/bench/stageprof"
	"github.com/example/go-ttstokenizer/internal/config"
	"github.com/example/go-ttstokenizer/internal/tts"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		input         string
		runs          int
		format        string
		minThroughput float64
		stages        bool
		warmup        int
		cpuprofile    string
	)

	cmd := &cobra.Command{
		Use:   "bench [text...]",
		Short: "Benchmark tokenization latency and throughput",
		Long: "Tokenizes the input lines as one batch per run. With --stages, the\n" +
			"input is profiled as a single text and each stage is timed separately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
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

			if stages {
				rep, err := stageprof.Run(cmd.Context(), svc, s, stageprof.Options{
					Runs:          runs,
					Warmup:        warmup,
					CPUProfile:    cpuprofile,
					SkipSymbolize: svc.Backend() == config.BackendSentencePiece,
				})
				if err != nil {
					return err
				}
				rep.Write(w)
				return nil
			}

			results, err := bench.Run(cmd.Context(), svc.TokenizeBatch, readLines(s), runs)
			if err != nil {
				return err
			}

			stats := bench.ComputeStats(bench.Durations(results))

			switch format {
			case "json":
				if err := bench.FormatJSON(results, stats, w); err != nil {
					return err
				}
			default:
				bench.FormatTable(results, stats, w)
			}

			return bench.CheckThroughputThreshold(bench.MeanThroughput(results), minThroughput)
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Input text, one text per line (default: arguments or stdin)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minThroughput, "min-throughput", 0, "Exit non-zero if mean tokens/s falls below this value (0 = disabled)")
	cmd.Flags().BoolVar(&stages, "stages", false, "Time normalize, symbolize and tokenize separately")
	cmd.Flags().IntVar(&warmup, "warmup", 1, "Warmup runs before profiling (with --stages)")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile labelled by stage (with --stages)")

	return cmd
}
