package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/pfassina/folio/internal/article"
)

type Config struct {
	SourceDir   string
	OutputFile  string
	CachePath   string
	NoCache     bool
	HostKeyPath string
	Listen      string
	LogLevel    string

	TagSplit      string
	ExcerptPolicy string
	ExcerptWords  int
	ExcerptChars  int
	ExcerptSuffix string
	Passthrough   bool
}

// Default returns the settings for a Jekyll-style site rooted at the
// working directory.
func Default() Config {
	opts := article.DefaultOptions()
	return Config{
		SourceDir:     "_posts",
		OutputFile:    "_data/articles.yml",
		HostKeyPath:   filepath.Join(ConfigDir(), "ssh_host_key"),
		Listen:        ":2222",
		LogLevel:      "info",
		TagSplit:      string(opts.TagSplit),
		ExcerptPolicy: string(opts.Excerpt.Policy),
		ExcerptWords:  opts.Excerpt.Words,
		ExcerptChars:  opts.Excerpt.Chars,
		ExcerptSuffix: opts.Excerpt.Suffix,
	}
}

// CacheDir returns the folio cache directory under the user cache dir.
func CacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "folio")
	}
	return filepath.Join(dir, "folio")
}

// CacheFile returns the record cache path. Without an explicit CachePath
// each source directory gets its own database under CacheDir, so building
// never writes into the site itself.
func (c Config) CacheFile() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	abs, err := filepath.Abs(c.SourceDir)
	if err != nil {
		abs = c.SourceDir
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(CacheDir(), hex.EncodeToString(sum[:8])+".db")
}

// ArticleOptions converts the normalization settings. The source prefix is
// left empty so the aggregator derives it from SourceDir.
func (c Config) ArticleOptions() (article.Options, error) {
	split, err := article.ParseTagSplit(c.TagSplit)
	if err != nil {
		return article.Options{}, err
	}
	policy, err := article.ParseExcerptPolicy(c.ExcerptPolicy)
	if err != nil {
		return article.Options{}, err
	}

	opts := article.Options{
		TagSplit: split,
		Excerpt: article.ExcerptOptions{
			Policy: policy,
			Words:  c.ExcerptWords,
			Chars:  c.ExcerptChars,
			Suffix: c.ExcerptSuffix,
		},
		Passthrough: c.Passthrough,
	}
	if err := opts.Validate(); err != nil {
		return article.Options{}, fmt.Errorf("invalid config: %w", err)
	}
	return opts, nil
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
