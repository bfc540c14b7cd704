package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/example/go-ttstokenizer/internal/server"
	"github.com/example/go-ttstokenizer/internal/tts"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tokenizer HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			// Fail before listening when models are missing.
			svc, err := tts.NewService(cfg)
			if err != nil {
				return err
			}

			srv := server.New(cfg, svc)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}
