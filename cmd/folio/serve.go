package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/spf13/cobra"

	sshsrv "github.com/pfassina/folio/internal/ssh"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index browser over SSH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sshsrv.New(cfg.Listen, cfg.HostKeyPath, loadIndex, cfg.OutputFile)
			if err != nil {
				return err
			}

			// Graceful shutdown on SIGINT/SIGTERM.
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sig
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.Shutdown(ctx); err != nil {
					logger.Warn("error closing server", "err", err)
				}
			}()

			logger.Info("serving", "addr", s.Addr(), "index", cfg.OutputFile)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("listen", "", "listen address (default :2222)")
	cmd.Flags().String("host-key", "", "SSH host key path")
	return cmd
}
