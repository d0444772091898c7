package article

import (
	"fmt"
	"strings"
)

// TagSplit controls how a single string tags/categories value becomes a list.
type TagSplit string

const (
	TagSplitNone  TagSplit = "none"  // "a, b" -> ["a, b"]
	TagSplitComma TagSplit = "comma" // "a, b" -> ["a", "b"]
)

// ExcerptPolicy selects how a missing excerpt is synthesized from the body.
type ExcerptPolicy string

const (
	ExcerptWords          ExcerptPolicy = "words"
	ExcerptFirstLine      ExcerptPolicy = "first_line"
	ExcerptFirstParagraph ExcerptPolicy = "first_paragraph"
)

// ExcerptOptions configures the excerpt fallback.
type ExcerptOptions struct {
	Policy ExcerptPolicy
	Words  int    // word budget for ExcerptWords
	Chars  int    // rune budget for ExcerptFirstLine and ExcerptFirstParagraph
	Suffix string // appended when text was cut
}

// Options configures normalization.
type Options struct {
	// SourcePrefix is stripped from relative paths before deriving a permalink.
	SourcePrefix string
	TagSplit     TagSplit
	Excerpt      ExcerptOptions
	// Passthrough copies author, cover-img and thumbnail-img into the record.
	Passthrough bool
}

func DefaultOptions() Options {
	return Options{
		SourcePrefix: "_posts/",
		TagSplit:     TagSplitNone,
		Excerpt: ExcerptOptions{
			Policy: ExcerptWords,
			Words:  30,
			Chars:  160,
			Suffix: "...",
		},
	}
}

// Validate reports option values the normalizer cannot honor.
func (o Options) Validate() error {
	if _, err := ParseTagSplit(string(o.TagSplit)); err != nil {
		return err
	}
	if _, err := ParseExcerptPolicy(string(o.Excerpt.Policy)); err != nil {
		return err
	}
	if o.Excerpt.Words <= 0 {
		return fmt.Errorf("excerpt word budget must be positive, got %d", o.Excerpt.Words)
	}
	if o.Excerpt.Chars <= len([]rune(o.Excerpt.Suffix)) {
		return fmt.Errorf("excerpt char budget %d must exceed the suffix length", o.Excerpt.Chars)
	}
	return nil
}

// Fingerprint identifies the options for cache invalidation.
func (o Options) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%q|%t",
		o.SourcePrefix, o.TagSplit, o.Excerpt.Policy, o.Excerpt.Words, o.Excerpt.Chars, o.Excerpt.Suffix, o.Passthrough)
}

func ParseTagSplit(s string) (TagSplit, error) {
	switch TagSplit(strings.ToLower(strings.TrimSpace(s))) {
	case TagSplitNone, "":
		return TagSplitNone, nil
	case TagSplitComma:
		return TagSplitComma, nil
	}
	return "", fmt.Errorf("unknown tag split policy %q (want none|comma)", s)
}

func ParseExcerptPolicy(s string) (ExcerptPolicy, error) {
	switch ExcerptPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ExcerptWords, "":
		return ExcerptWords, nil
	case ExcerptFirstLine:
		return ExcerptFirstLine, nil
	case ExcerptFirstParagraph:
		return ExcerptFirstParagraph, nil
	}
	return "", fmt.Errorf("unknown excerpt policy %q (want words|first_line|first_paragraph)", s)
}
