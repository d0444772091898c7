package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfassina/folio/internal/config"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Choose the source directory and save it to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := config.RunSetup(cfgFile)
			if err != nil {
				return fmt.Errorf("setup failed: %w", err)
			}
			if res.Cancelled {
				return nil
			}
			path := cfgFile
			if path == "" {
				path = config.ConfigPath()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "source %s saved to %s\n", res.SourceDir, path)
			return nil
		},
	}
}
