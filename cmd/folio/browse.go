package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pfassina/folio/internal/article"
	"github.com/pfassina/folio/internal/browse"
	"github.com/pfassina/folio/internal/index"
)

func browseCmd() *cobra.Command {
	var rebuild bool
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the generated index in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rebuild {
				if err := runBuild(cmd); err != nil {
					return err
				}
			}

			m := browse.NewWithLoader(loadIndex, cfg.OutputFile)
			m.SetOutput(cmd.OutOrStdout())
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "build the index before browsing")
	return cmd
}

func loadIndex() ([]article.Record, error) {
	recs, err := index.Load(cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("%w (run folio build first)", err)
	}
	return recs, nil
}
