package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the watchlist scheduler, the Kafka request consumer and the metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			c.InitBackground()
			errCh, err := c.Start()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := c.Wait(ctx, errCh); err != nil {
				return err
			}
			c.Log.Info("Shutdown signal received")
			return nil
		},
	}
}
