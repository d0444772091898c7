package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pfassina/folio/internal/config"
)

// loadConfig layers defaults, the TOML file, FOLIO_* environment
// variables and explicit flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if cfgFile == "" {
		cfgFile = os.Getenv("FOLIO_CONFIG")
	}

	c := config.Default()
	if _, err := config.LoadFile(&c, cfgFile); err != nil {
		// init may be pointed at a file it is about to create.
		if cmd.Name() != "init" || !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("load config: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{
		"source", "output", "cache", "no-cache", "log-level",
		"tag-split", "excerpt-policy", "excerpt-words", "passthrough",
		"listen", "host-key",
	} {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return c, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	if v.IsSet("source") {
		c.SourceDir = config.ExpandHome(v.GetString("source"))
	}
	if v.IsSet("output") {
		c.OutputFile = config.ExpandHome(v.GetString("output"))
	}
	if v.IsSet("cache") {
		c.CachePath = config.ExpandHome(v.GetString("cache"))
	}
	if v.IsSet("no-cache") {
		c.NoCache = v.GetBool("no-cache")
	}
	if v.IsSet("log-level") {
		c.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("tag-split") {
		c.TagSplit = v.GetString("tag-split")
	}
	if v.IsSet("excerpt-policy") {
		c.ExcerptPolicy = v.GetString("excerpt-policy")
	}
	if v.IsSet("excerpt-words") {
		c.ExcerptWords = v.GetInt("excerpt-words")
	}
	if v.IsSet("passthrough") {
		c.Passthrough = v.GetBool("passthrough")
	}
	if v.IsSet("listen") {
		c.Listen = v.GetString("listen")
	}
	if v.IsSet("host-key") {
		c.HostKeyPath = config.ExpandHome(v.GetString("host-key"))
	}
	return c, nil
}
