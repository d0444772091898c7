package index

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pfassina/folio/internal/article"
)

func TestWatcherRebuildsOnChange(t *testing.T) {
	src, out := site(t, map[string]string{
		"a.md": "---\ntitle: A\ndate: 2024-01-01\n---\n",
	})

	builds := make(chan *Report, 8)
	w, err := NewWatcher(NewAggregator(src, out, article.DefaultOptions()),
		func(r *Report) { builds <- r },
		func(err error) { t.Errorf("watcher error: %v", err) },
	)
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(20 * time.Millisecond)
	defer w.Stop()
	go w.Start()

	if _, err := w.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if r := <-builds; len(r.Records) != 1 {
		t.Fatalf("initial build: got %d records", len(r.Records))
	}

	sub := filepath.Join(src, "2024")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to pick up the new directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "b.md"), []byte("---\ntitle: B\ndate: 2024-02-01\n---\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-builds:
			if len(r.Records) == 2 {
				if r.Records[0].Title != "B" {
					t.Errorf("newest first: got %q", r.Records[0].Title)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for rebuild")
		}
	}
}

func TestWatcherMissingSource(t *testing.T) {
	dir := t.TempDir()
	agg := NewAggregator(filepath.Join(dir, "missing"), filepath.Join(dir, "out.yml"), article.DefaultOptions())
	if _, err := NewWatcher(agg, nil, nil); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	src, out := site(t, nil)
	w, err := NewWatcher(NewAggregator(src, out, article.DefaultOptions()), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestWatcherStopWaitsForRebuild(t *testing.T) {
	src, out := site(t, map[string]string{
		"a.md": "---\ntitle: A\n---\n",
	})

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	w, err := NewWatcher(NewAggregator(src, out, article.DefaultOptions()),
		func(*Report) {
			once.Do(func() { close(started) })
			<-release
		},
		func(err error) { t.Errorf("watcher error: %v", err) },
	)
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(time.Millisecond)
	w.schedule()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled rebuild never ran")
	}

	stopped := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a rebuild was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the rebuild finished")
	}
}

func TestWatcherNoRebuildAfterStop(t *testing.T) {
	src, out := site(t, map[string]string{
		"a.md": "---\ntitle: A\n---\n",
	})

	w, err := NewWatcher(NewAggregator(src, out, article.DefaultOptions()),
		func(*Report) { t.Error("rebuild ran after Stop") }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	// A timer firing after Stop must not build; call its body directly.
	w.scheduled()
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("index written after Stop: %v", err)
	}
}
