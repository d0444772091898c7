package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfassina/folio/internal/index"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the index whenever an article changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, closeCache, err := newAggregator(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			out := cmd.OutOrStdout()
			w, err := index.NewWatcher(agg,
				func(r *index.Report) { printReport(out, r) },
				func(err error) { logger.Error("rebuild failed", "err", err) },
			)
			if err != nil {
				return err
			}

			if _, err := w.Rebuild(); err != nil {
				_ = w.Stop()
				return err
			}

			// Graceful shutdown on SIGINT/SIGTERM.
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sig
				if err := w.Stop(); err != nil {
					logger.Warn("stop watcher", "err", err)
				}
			}()

			logger.Info("watching", "source", agg.Source())
			w.Start()
			return w.Stop()
		},
	}
}
