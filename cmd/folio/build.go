package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pfassina/folio/internal/config"
	"github.com/pfassina/folio/internal/index"
)

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Write the article index once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd)
		},
	}
}

func runBuild(cmd *cobra.Command) error {
	agg, closeCache, err := newAggregator(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	report, err := agg.Run()
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

// newAggregator wires the aggregator to the configured cache. The returned
// func closes the cache and is safe to call when caching is off.
func newAggregator(c config.Config) (*index.Aggregator, func(), error) {
	opts, err := c.ArticleOptions()
	if err != nil {
		return nil, nil, err
	}

	options := []index.Option{index.WithLogger(logger)}
	closeCache := func() {}
	if !c.NoCache {
		path := c.CacheFile()
		db, err := index.Open(path)
		if err != nil {
			// The index can always be rebuilt from source.
			logger.Warn("cache unavailable, building without it", "path", path, "err", err)
		} else {
			options = append(options, index.WithCache(db))
			closeCache = func() {
				if err := db.Close(); err != nil {
					logger.Warn("close cache", "err", err)
				}
			}
		}
	}

	return index.NewAggregator(c.SourceDir, c.OutputFile, opts, options...), closeCache, nil
}

func printReport(w io.Writer, r *index.Report) {
	logger.Debug("build finished",
		"indexed", r.Count(index.StatusIndexed),
		"skipped", r.Count(index.StatusSkipped),
		"failed", r.Count(index.StatusFailed))
	fmt.Fprintf(w, "%d articles exported to %s (%s)\n", len(r.Records), r.Output, humanize.Bytes(uint64(r.Bytes)))
}
