package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfgFile = ""

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	posts := filepath.Join(dir, "_posts")
	os.MkdirAll(posts, 0755)
	os.WriteFile(filepath.Join(posts, "a.md"), []byte("---\ntitle: A\ndate: 2024-01-01\n---\nAlpha body."), 0644)
	os.WriteFile(filepath.Join(posts, "b.md"), []byte("---\ntitle: B\ndate: 2024-02-01\n---\nBeta body."), 0644)
	os.WriteFile(filepath.Join(posts, "skip.md"), []byte("no header"), 0644)
	return dir
}

func TestBuildDefaultCommand(t *testing.T) {
	dir := writeSite(t)
	output := filepath.Join(dir, "_data", "articles.yml")

	out, err := execute(t,
		"--source", filepath.Join(dir, "_posts"),
		"--output", output,
		"--cache", filepath.Join(dir, ".folio", "index.db"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "2 articles exported to "+output) {
		t.Errorf("status line: %q", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("index not written: %v", err)
	}
}

func TestBuildDefaultCacheOutsideSite(t *testing.T) {
	dir := writeSite(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if _, err := execute(t,
		"--source", filepath.Join(dir, "_posts"),
		"--output", filepath.Join(dir, "_data", "articles.yml"),
	); err != nil {
		t.Fatal(err)
	}

	cache := cfg.CacheFile()
	if strings.HasPrefix(cache, dir) {
		t.Errorf("cache %q written inside the site", cache)
	}
	if _, err := os.Stat(cache); err != nil {
		t.Errorf("cache not created: %v", err)
	}
	if _, err := os.Stat(".folio"); !os.IsNotExist(err) {
		t.Error("build created .folio in the working directory")
	}
}

func TestBuildMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "build",
		"--source", filepath.Join(dir, "missing"),
		"--output", filepath.Join(dir, "out.yml"),
		"--no-cache",
	)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestEnvOverlay(t *testing.T) {
	dir := writeSite(t)
	output := filepath.Join(dir, "env.yml")
	t.Setenv("FOLIO_SOURCE", filepath.Join(dir, "_posts"))
	t.Setenv("FOLIO_OUTPUT", output)
	t.Setenv("FOLIO_NO_CACHE", "true")

	out, err := execute(t, "build")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, output) {
		t.Errorf("status line: %q", out)
	}
	if !cfg.NoCache {
		t.Error("FOLIO_NO_CACHE not applied")
	}
	if _, err := os.Stat(filepath.Join(dir, ".folio")); !os.IsNotExist(err) {
		t.Error("cache created despite FOLIO_NO_CACHE")
	}
}

func TestFlagBeatsConfigFile(t *testing.T) {
	dir := writeSite(t)
	conf := filepath.Join(dir, "folio.toml")
	os.WriteFile(conf, []byte("output_file = \"from-file.yml\"\ntag_split = \"comma\"\n"), 0644)
	output := filepath.Join(dir, "from-flag.yml")

	if _, err := execute(t, "build", "--config", conf,
		"--source", filepath.Join(dir, "_posts"), "--output", output, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if cfg.OutputFile != output {
		t.Errorf("output: got %q, want %q", cfg.OutputFile, output)
	}
	if cfg.TagSplit != "comma" {
		t.Errorf("tag split from file: got %q", cfg.TagSplit)
	}
}

func TestInvalidPolicy(t *testing.T) {
	dir := writeSite(t)
	_, err := execute(t, "build", "--source", filepath.Join(dir, "_posts"),
		"--output", filepath.Join(dir, "x.yml"), "--no-cache", "--excerpt-policy", "summary")
	if err == nil {
		t.Fatal("expected error for unknown excerpt policy")
	}
}

func TestSearch(t *testing.T) {
	dir := writeSite(t)
	out, err := execute(t, "search", "beta",
		"--source", filepath.Join(dir, "_posts"),
		"--output", filepath.Join(dir, "articles.yml"),
		"--cache", filepath.Join(dir, "cache.db"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2024-02-01") || strings.Contains(out, "2024-01-01") {
		t.Errorf("search output:\n%s", out)
	}
}
