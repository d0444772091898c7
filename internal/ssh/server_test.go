package ssh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pfassina/folio/internal/article"
)

func TestNewCreatesKeyDir(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "keys", "host_key")
	load := func() ([]article.Record, error) { return nil, nil }

	s, err := New("127.0.0.1:0", keyPath, load, "articles.yml")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(keyPath)); err != nil {
		t.Errorf("key directory not created: %v", err)
	}
	if s.Addr() != "127.0.0.1:0" {
		t.Errorf("addr: got %q", s.Addr())
	}
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(func() ([]article.Record, error) { return nil, nil }, "x")
	if h == nil {
		t.Fatal("nil handler")
	}
}
