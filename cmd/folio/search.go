package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pfassina/folio/internal/index"
)

func searchCmd() *cobra.Command {
	var (
		limit  int
		titles bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search the record cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.NoCache {
				return fmt.Errorf("search needs the record cache; drop --no-cache")
			}

			opts, err := cfg.ArticleOptions()
			if err != nil {
				return err
			}
			db, err := index.Open(cfg.CacheFile())
			if err != nil {
				return err
			}
			defer db.Close()

			// Refresh first so results match the sources.
			agg := index.NewAggregator(cfg.SourceDir, cfg.OutputFile, opts,
				index.WithCache(db), index.WithLogger(logger))
			if _, err := agg.Run(); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			var results []index.SearchResult
			if titles {
				results, err = db.SearchTitles(query, limit)
			} else {
				results, err = db.Search(query, limit)
			}
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Date, r.Title, r.Permalink)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results")
	cmd.Flags().BoolVar(&titles, "titles", false, "match titles and paths only")
	return cmd
}
