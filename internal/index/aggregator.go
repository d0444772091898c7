package index

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pfassina/folio/internal/article"
	"github.com/pfassina/folio/internal/markdown"
)

// ErrSourceMissing is returned when the source root is absent or not a directory.
var ErrSourceMissing = errors.New("source directory not found")

// Status is the outcome of processing one source file.
type Status int

const (
	StatusIndexed Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIndexed:
		return "indexed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome records what happened to one source file.
type Outcome struct {
	Path   string // relative to the source root's parent, slash separated
	Status Status
	Record article.Record
	Reason string
	Err    error
	Cached bool
}

// Report summarizes a run.
type Report struct {
	Records  []article.Record
	Outcomes []Outcome
	Output   string
	Bytes    int64
}

// Count returns the number of outcomes with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Cache stores normalized records keyed by source path and content hash.
type Cache interface {
	Lookup(path, hash string) (article.Record, bool, error)
	Put(path, hash string, rec article.Record, body string) error
	Prune(keep []string) error
}

// Aggregator builds the article index from a source tree.
type Aggregator struct {
	source     string
	output     string
	normalizer *article.Normalizer
	cache      Cache
	logger     *log.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCache makes the aggregator reuse records for unchanged files.
func WithCache(c Cache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator creates an aggregator reading source and writing output.
// An empty opts.SourcePrefix is set to the source directory's name.
func NewAggregator(source, output string, opts article.Options, options ...Option) *Aggregator {
	if abs, err := filepath.Abs(source); err == nil {
		source = abs
	}
	if opts.SourcePrefix == "" {
		opts.SourcePrefix = filepath.Base(source) + "/"
	}

	a := &Aggregator{
		source:     source,
		output:     output,
		normalizer: article.NewNormalizer(opts),
		logger:     log.New(io.Discard),
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// Source returns the absolute source root.
func (a *Aggregator) Source() string { return a.source }

// Output returns the index file path.
func (a *Aggregator) Output() string { return a.output }

// Run collects, sorts and writes the index.
func (a *Aggregator) Run() (*Report, error) {
	outcomes, err := a.Collect()
	if err != nil {
		return nil, err
	}

	report := &Report{Outcomes: outcomes, Output: a.output, Records: []article.Record{}}
	var keep []string
	for _, o := range outcomes {
		if o.Status == StatusIndexed {
			report.Records = append(report.Records, o.Record)
			keep = append(keep, o.Path)
		}
	}
	SortRecords(report.Records)

	n, err := WriteIndex(a.output, report.Records)
	if err != nil {
		return nil, err
	}
	report.Bytes = n

	if a.cache != nil {
		if err := a.cache.Prune(keep); err != nil {
			a.logger.Warn("prune cache", "err", err)
		}
	}
	return report, nil
}

// Collect processes every markdown file under the source root. Only a
// missing source root is an error; per-file problems become outcomes.
func (a *Aggregator) Collect() ([]Outcome, error) {
	info, err := os.Stat(a.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, a.source)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, a.source)
	}

	var outcomes []Outcome
	err = filepath.WalkDir(a.source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == a.source {
				return err
			}
			a.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		o := a.ProcessFile(path)
		switch o.Status {
		case StatusFailed:
			a.logger.Warn("skipping file", "path", o.Path, "err", o.Err)
		case StatusSkipped:
			a.logger.Debug("skipping file", "path", o.Path, "reason", o.Reason)
		}
		outcomes = append(outcomes, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", a.source, err)
	}
	return outcomes, nil
}

// ProcessFile reads and normalizes a single markdown file.
func (a *Aggregator) ProcessFile(absPath string) Outcome {
	o := Outcome{Path: a.relPath(absPath)}

	content, err := os.ReadFile(absPath)
	if err != nil {
		o.Status = StatusFailed
		o.Err = fmt.Errorf("read %s: %w", o.Path, err)
		return o
	}

	hash := a.hash(content)
	if a.cache != nil {
		rec, ok, err := a.cache.Lookup(o.Path, hash)
		if err != nil {
			a.logger.Warn("cache lookup", "path", o.Path, "err", err)
		} else if ok {
			o.Status = StatusIndexed
			o.Record = rec
			o.Cached = true
			return o
		}
	}

	fm, body, err := markdown.Extract(content)
	if err != nil {
		o.Status = StatusFailed
		o.Err = fmt.Errorf("%s: %w", o.Path, err)
		return o
	}
	if fm == nil {
		o.Status = StatusSkipped
		o.Reason = "no front matter"
		return o
	}

	rec, ok := a.normalizer.Normalize(fm.Mapping, o.Path, body)
	if !ok {
		o.Status = StatusSkipped
		o.Reason = "missing title"
		return o
	}

	o.Status = StatusIndexed
	o.Record = rec
	if a.cache != nil {
		if err := a.cache.Put(o.Path, hash, rec, body); err != nil {
			a.logger.Warn("cache store", "path", o.Path, "err", err)
		}
	}
	return o
}

// relPath returns absPath relative to the source root's parent, so that
// files keep their source prefix ("_posts/2024/hello.md").
func (a *Aggregator) relPath(absPath string) string {
	rel, err := filepath.Rel(filepath.Dir(a.source), absPath)
	if err != nil {
		rel = absPath
	}
	return filepath.ToSlash(rel)
}

// hash covers the normalizer options so a policy change invalidates the cache.
func (a *Aggregator) hash(content []byte) string {
	h := sha256.New()
	io.WriteString(h, a.normalizer.Options().Fingerprint())
	h.Write([]byte{0})
	h.Write(content)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// SortRecords orders records by date, newest first. Records with equal
// dates keep their relative order.
func SortRecords(recs []article.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date > recs[j].Date
	})
}
