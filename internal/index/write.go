package index

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pfassina/folio/internal/article"
)

// Encode writes records as a block-style YAML sequence.
func Encode(w io.Writer, recs []article.Record) error {
	if recs == nil {
		recs = []article.Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return enc.Close()
}

// WriteIndex replaces the file at path with the encoded records. The new
// content is written to a temporary file in the same directory and renamed
// into place, so readers never see a partial index.
func WriteIndex(path string, recs []article.Record) (int64, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, recs); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return 0, fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return 0, fmt.Errorf("replace %s: %w", path, err)
	}
	return int64(buf.Len()), nil
}

// Load reads an index file written by WriteIndex.
func Load(path string) ([]article.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []article.Record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range recs {
		if recs[i].Tags == nil {
			recs[i].Tags = []string{}
		}
		if recs[i].Categories == nil {
			recs[i].Categories = []string{}
		}
		recs[i].Slug = article.Slugify(recs[i].Title)
	}
	return recs, nil
}
