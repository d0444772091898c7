package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pfassina/folio/internal/config"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *log.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "folio",
		Short: "Build a YAML article index from markdown front matter",
		Long: `folio reads the front matter of every markdown file under a source
directory and writes one sorted YAML index that a static site can render.
Run without a subcommand to build once.

Parsed records are cached in a SQLite database under the user cache
directory (one per source directory) unless --cache names another file or
--no-cache is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = c
			logger = newLogger(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/folio/config.toml)")
	pf.String("source", "", "directory of markdown articles")
	pf.String("output", "", "index file to write")
	pf.String("cache", "", "record cache database (default: per-source file under the user cache dir)")
	pf.Bool("no-cache", false, "disable the record cache")
	pf.String("log-level", "", "log level: debug|info|warn|error")
	pf.String("tag-split", "", "single-string tags policy: none|comma")
	pf.String("excerpt-policy", "", "excerpt fallback: words|first_line|first_paragraph")
	pf.Int("excerpt-words", 0, "word budget for the words policy")
	pf.Bool("passthrough", false, "copy author, cover-img and thumbnail-img into records")

	root.AddCommand(buildCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(browseCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	return root
}

func newLogger(c config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  c.Level(),
		Prefix: "folio",
	})
}
