package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML.
type fileConfig struct {
	SourceDir     *string `toml:"source_dir"`
	OutputFile    *string `toml:"output_file"`
	CachePath     *string `toml:"cache_path"`
	NoCache       *bool   `toml:"no_cache"`
	HostKeyPath   *string `toml:"host_key_path"`
	Listen        *string `toml:"listen"`
	LogLevel      *string `toml:"log_level"`
	TagSplit      *string `toml:"tag_split"`
	ExcerptPolicy *string `toml:"excerpt_policy"`
	ExcerptWords  *int    `toml:"excerpt_words"`
	ExcerptChars  *int    `toml:"excerpt_chars"`
	ExcerptSuffix *string `toml:"excerpt_suffix"`
	Passthrough   *bool   `toml:"passthrough"`
}

// ConfigDir returns the folio config directory, respecting XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "folio")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "folio")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadFile reads a TOML config and merges non-nil fields into cfg. An empty
// path means ConfigPath(), which may be absent; an explicit path must exist.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config, path string) (bool, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}
	data, err := os.ReadFile(ExpandHome(path))
	if os.IsNotExist(err) && !explicit {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if _, err := toml.Decode(string(data), &fc); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.SourceDir, fc.SourceDir, true)
	setString(&cfg.OutputFile, fc.OutputFile, true)
	setString(&cfg.CachePath, fc.CachePath, true)
	setString(&cfg.HostKeyPath, fc.HostKeyPath, true)
	setString(&cfg.Listen, fc.Listen, false)
	setString(&cfg.LogLevel, fc.LogLevel, false)
	setString(&cfg.TagSplit, fc.TagSplit, false)
	setString(&cfg.ExcerptPolicy, fc.ExcerptPolicy, false)
	setString(&cfg.ExcerptSuffix, fc.ExcerptSuffix, false)
	if fc.NoCache != nil {
		cfg.NoCache = *fc.NoCache
	}
	if fc.ExcerptWords != nil {
		cfg.ExcerptWords = *fc.ExcerptWords
	}
	if fc.ExcerptChars != nil {
		cfg.ExcerptChars = *fc.ExcerptChars
	}
	if fc.Passthrough != nil {
		cfg.Passthrough = *fc.Passthrough
	}

	return true, nil
}

func setString(dst *string, v *string, isPath bool) {
	if v == nil {
		return
	}
	if isPath {
		*dst = ExpandHome(*v)
		return
	}
	*dst = *v
}

// SaveFile sets source_dir in the config file at path, keeping any other
// settings already there. The file is replaced atomically.
func SaveFile(path, sourceDir string) error {
	if path == "" {
		path = ConfigPath()
	}
	path = ExpandHome(path)

	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return err
	}

	// Store with ~ for readability if under home dir.
	home, _ := os.UserHomeDir()
	display := sourceDir
	if home != "" && strings.HasPrefix(sourceDir, home+string(os.PathSeparator)) {
		display = "~" + sourceDir[len(home):]
	}
	fc.SourceDir = &display

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config.toml.*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := toml.NewEncoder(tmp).Encode(fc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
