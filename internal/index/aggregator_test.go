package index

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pfassina/folio/internal/article"
	"github.com/pfassina/folio/internal/markdown"
)

// site creates a _posts tree under a temp dir and returns the source root
// and an output path.
func site(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "_posts")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		path := filepath.Join(src, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return src, filepath.Join(dir, "_data", "articles.yml")
}

func run(t *testing.T, src, out string, opts article.Options, options ...Option) *Report {
	t.Helper()
	report, err := NewAggregator(src, out, opts, options...).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return report
}

func TestRunWellFormed(t *testing.T) {
	src, out := site(t, map[string]string{
		"hello.md": "---\ntitle: \"Hello\"\ndate: 2024-01-15\ntags: [a, b]\n---\nSome text.",
	})

	report := run(t, src, out, article.DefaultOptions())
	if len(report.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(report.Records))
	}

	want := article.Record{
		Title:      "Hello",
		Date:       "2024-01-15",
		Tags:       []string{"a", "b"},
		Categories: []string{},
		Excerpt:    "Some text.",
		Permalink:  "/hello.html",
		Slug:       "hello",
	}
	if !reflect.DeepEqual(report.Records[0], want) {
		t.Errorf("\ngot:  %#v\nwant: %#v", report.Records[0], want)
	}

	loaded, err := Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, report.Records) {
		t.Errorf("written index differs:\ngot:  %#v\nwant: %#v", loaded, report.Records)
	}
	if report.Output != out || report.Bytes == 0 {
		t.Errorf("report: output %q, bytes %d", report.Output, report.Bytes)
	}
}

func TestRunExclusions(t *testing.T) {
	src, out := site(t, map[string]string{
		"no-title.md":        "---\ndate: 2024-01-01\n---\nBody.",
		"no-front-matter.md": "# Just markdown\n\nNo header here.",
		"unclosed.md":        "---\ntitle: Never closed\n\nBody.",
		"kept.md":            "---\ntitle: Kept\n---\nBody.",
		"notes.txt":          "---\ntitle: Not markdown\n---\n",
	})

	report := run(t, src, out, article.DefaultOptions())

	if len(report.Records) != 1 || report.Records[0].Title != "Kept" {
		t.Fatalf("got records %+v", report.Records)
	}
	if got := report.Count(StatusSkipped); got != 3 {
		t.Errorf("skipped: got %d, want 3", got)
	}
	if got := report.Count(StatusFailed); got != 0 {
		t.Errorf("failed: got %d, want 0", got)
	}
	for _, o := range report.Outcomes {
		if strings.HasSuffix(o.Path, ".txt") {
			t.Errorf("non-markdown file processed: %s", o.Path)
		}
	}
}

func TestRunMalformedHeaderContinues(t *testing.T) {
	src, out := site(t, map[string]string{
		"bad.md":  "---\ntitle: [unclosed\n---\nBody.",
		"good.md": "---\ntitle: Good\n---\nBody.",
	})

	report := run(t, src, out, article.DefaultOptions())

	if len(report.Records) != 1 || report.Records[0].Title != "Good" {
		t.Fatalf("got records %+v", report.Records)
	}
	var failed *Outcome
	for i := range report.Outcomes {
		if report.Outcomes[i].Status == StatusFailed {
			failed = &report.Outcomes[i]
		}
	}
	if failed == nil {
		t.Fatal("expected a failed outcome")
	}
	if failed.Path != "_posts/bad.md" {
		t.Errorf("failed path: got %q", failed.Path)
	}
	if !errors.Is(failed.Err, markdown.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", failed.Err)
	}
}

func TestRunSortOrder(t *testing.T) {
	src, out := site(t, map[string]string{
		"a.md": "---\ntitle: A\ndate: 2024-03-01\n---\n",
		"b.md": "---\ntitle: B\ndate: 2024-01-10\n---\n",
		"c.md": "---\ntitle: C\ndate: 2024-02-20\n---\n",
	})

	report := run(t, src, out, article.DefaultOptions())

	var got []string
	for _, r := range report.Records {
		got = append(got, r.Date)
	}
	want := []string{"2024-03-01", "2024-02-20", "2024-01-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortRecordsStable(t *testing.T) {
	recs := []article.Record{
		{Title: "first", Date: "2024-01-01"},
		{Title: "newest", Date: "2024-05-01"},
		{Title: "second", Date: "2024-01-01"},
		{Title: "undated", Date: ""},
		{Title: "third", Date: "2024-01-01"},
	}
	SortRecords(recs)

	var got []string
	for _, r := range recs {
		got = append(got, r.Title)
	}
	want := []string{"newest", "first", "second", "third", "undated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunIdempotent(t *testing.T) {
	src, out := site(t, map[string]string{
		"2024/one.md":   "---\ntitle: One\ndate: 2024-01-01\ntags: x\n---\nÜber text.",
		"2024/two.md":   "---\ntitle: Two\ndate: 2024-01-01\n---\nSame date.",
		"2023/three.md": "---\ntitle: Three\ndate: \"not-a-real-date\"\n---\n",
	})

	run(t, src, out, article.DefaultOptions())
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	run(t, src, out, article.DefaultOptions())
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("output changed between runs:\n%s\n---\n%s", first, second)
	}
	if !strings.Contains(string(first), "Über text.") {
		t.Errorf("non-ASCII text escaped:\n%s", first)
	}
}

func TestRunNestedPermalinks(t *testing.T) {
	src, out := site(t, map[string]string{
		"2024/01/deep.md": "---\ntitle: Deep\n---\n",
		"custom.md":       "---\ntitle: Custom\npermalink: /about/\n---\n",
	})

	report := run(t, src, out, article.DefaultOptions())

	got := map[string]string{}
	for _, r := range report.Records {
		got[r.Title] = r.Permalink
	}
	want := map[string]string{"Deep": "/2024/01/deep.html", "Custom": "/about/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunSourcePrefixFromRoot(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "posts")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "x.md"), []byte("---\ntitle: X\n---\n"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := article.DefaultOptions()
	opts.SourcePrefix = ""
	report := run(t, src, filepath.Join(dir, "out.yml"), opts)

	if len(report.Records) != 1 || report.Records[0].Permalink != "/x.html" {
		t.Errorf("got %+v", report.Records)
	}
}

func TestRunExcerptFallback(t *testing.T) {
	long := strings.Repeat("word ", 50)
	src, out := site(t, map[string]string{
		"long.md":  "---\ntitle: Long\n---\n" + long,
		"short.md": "---\ntitle: Short\n---\n{% include x.html %}<p>Tiny body.</p>",
	})

	report := run(t, src, out, article.DefaultOptions())

	got := map[string]string{}
	for _, r := range report.Records {
		got[r.Title] = r.Excerpt
	}
	if e := got["Long"]; !strings.HasSuffix(e, "...") || len(strings.Fields(strings.TrimSuffix(e, "..."))) != 30 {
		t.Errorf("long excerpt: %q", e)
	}
	if e := got["Short"]; e != "Tiny body." {
		t.Errorf("short excerpt: %q", e)
	}
}

func TestRunZeroRecords(t *testing.T) {
	src, out := site(t, nil)

	report := run(t, src, out, article.DefaultOptions())
	if len(report.Records) != 0 {
		t.Fatalf("got %+v", report.Records)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("got %q", data)
	}
}

func TestRunMissingSource(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.yml")

	_, err := NewAggregator(filepath.Join(dir, "nope"), out, article.DefaultOptions()).Run()
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output should not be written")
	}

	file := filepath.Join(dir, "file.md")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAggregator(file, out, article.DefaultOptions()).Run(); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("file as source: expected ErrSourceMissing, got %v", err)
	}
}

func TestRunWithCache(t *testing.T) {
	src, out := site(t, map[string]string{
		"a.md": "---\ntitle: A\ndate: 2024-01-01\n---\nAlpha.",
		"b.md": "---\ntitle: B\ndate: 2024-02-01\n---\nBeta.",
	})

	db, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	first := run(t, src, out, article.DefaultOptions(), WithCache(db))
	for _, o := range first.Outcomes {
		if o.Cached {
			t.Errorf("first run should not hit the cache: %s", o.Path)
		}
	}
	firstOut, _ := os.ReadFile(out)

	second := run(t, src, out, article.DefaultOptions(), WithCache(db))
	for _, o := range second.Outcomes {
		if !o.Cached {
			t.Errorf("second run should hit the cache: %s", o.Path)
		}
	}
	secondOut, _ := os.ReadFile(out)
	if string(firstOut) != string(secondOut) {
		t.Errorf("cached output differs:\n%s\n---\n%s", firstOut, secondOut)
	}

	// Edits and option changes both invalidate.
	if err := os.WriteFile(filepath.Join(src, "a.md"), []byte("---\ntitle: A2\n---\n"), 0644); err != nil {
		t.Fatal(err)
	}
	third := run(t, src, out, article.DefaultOptions(), WithCache(db))
	for _, o := range third.Outcomes {
		if want := o.Path == "_posts/b.md"; o.Cached != want {
			t.Errorf("%s: cached=%v, want %v", o.Path, o.Cached, want)
		}
	}

	opts := article.DefaultOptions()
	opts.TagSplit = article.TagSplitComma
	fourth := run(t, src, out, opts, WithCache(db))
	for _, o := range fourth.Outcomes {
		if o.Cached {
			t.Errorf("option change should invalidate %s", o.Path)
		}
	}

	// Removed files are pruned.
	if err := os.Remove(filepath.Join(src, "b.md")); err != nil {
		t.Fatal(err)
	}
	run(t, src, out, opts, WithCache(db))
	if n, _ := db.Count(); n != 1 {
		t.Errorf("cache count after removal: got %d, want 1", n)
	}
}
