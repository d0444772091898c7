package article

import (
	"strings"
	"time"

	"github.com/pfassina/folio/internal/markdown"
)

// dateLayouts are tried in order against string dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

const isoDate = "2006-01-02"

// Normalizer turns parsed front matter into index records.
type Normalizer struct {
	opts    Options
	excerpt *Excerpter
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{
		opts:    opts,
		excerpt: NewExcerpter(opts.Excerpt),
	}
}

// Options returns the options the normalizer was built with.
func (n *Normalizer) Options() Options { return n.opts }

// Normalize builds the record for a document. It reports false when the
// document is not eligible for the index (no usable title).
func (n *Normalizer) Normalize(fm markdown.Mapping, relPath, body string) (Record, bool) {
	title, ok := scalarText(fm, "title")
	if !ok || strings.TrimSpace(title) == "" {
		return Record{}, false
	}

	rec := Record{
		Title:      title,
		Date:       n.date(fm),
		Tags:       n.list(fm, "tags"),
		Categories: n.list(fm, "categories"),
		Permalink:  n.permalink(fm, relPath),
		Slug:       Slugify(title),
	}

	if excerpt, ok := scalarText(fm, "excerpt"); ok && strings.TrimSpace(excerpt) != "" {
		rec.Excerpt = excerpt
	} else {
		rec.Excerpt = n.excerpt.Excerpt(body)
	}

	if n.opts.Passthrough {
		rec.Author, _ = scalarText(fm, "author")
		rec.CoverImg, _ = scalarText(fm, "cover-img")
		rec.ThumbnailImg, _ = scalarText(fm, "thumbnail-img")
	}

	return rec, true
}

func (n *Normalizer) date(fm markdown.Mapping) string {
	v, ok := fm.Get("date")
	if !ok {
		return ""
	}
	return NormalizeDate(v)
}

// NormalizeDate returns the YYYY-MM-DD form of a date value, or the raw
// value unchanged when no accepted layout matches.
func NormalizeDate(v markdown.Value) string {
	s, ok := v.(markdown.Scalar)
	if !ok {
		return v.String()
	}
	if s.IsNull() {
		return ""
	}
	if t, ok := s.Time(); ok {
		return t.Format(isoDate)
	}

	raw := strings.TrimSpace(s.Text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}
	return s.Text
}

func (n *Normalizer) list(fm markdown.Mapping, key string) []string {
	out := []string{}
	v, ok := fm.Get(key)
	if !ok {
		return out
	}

	switch val := v.(type) {
	case markdown.Scalar:
		if val.IsNull() {
			return out
		}
		if n.opts.TagSplit != TagSplitComma {
			return append(out, val.Text)
		}
		for _, part := range strings.Split(val.Text, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case markdown.Sequence:
		for _, item := range val {
			if s, ok := item.(markdown.Scalar); ok && !s.IsNull() {
				out = append(out, s.Text)
			}
		}
	}
	return out
}

func (n *Normalizer) permalink(fm markdown.Mapping, relPath string) string {
	if p, ok := scalarText(fm, "permalink"); ok && p != "" {
		return p
	}
	return DerivePermalink(relPath, n.opts.SourcePrefix)
}

// DerivePermalink maps a source path such as "_posts/2024/hello.md" to
// "/2024/hello.html".
func DerivePermalink(relPath, prefix string) string {
	p := strings.ReplaceAll(relPath, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	if prefix = strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/"); prefix != "" {
		p = strings.TrimPrefix(p, prefix+"/")
	}
	p = strings.TrimLeft(p, "/")
	if strings.HasSuffix(p, ".md") {
		p = strings.TrimSuffix(p, ".md") + ".html"
	}
	return "/" + p
}

// scalarText returns the text of a non-null scalar field.
func scalarText(fm markdown.Mapping, key string) (string, bool) {
	v, ok := fm.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(markdown.Scalar)
	if !ok || s.IsNull() {
		return "", false
	}
	return s.Text, true
}
