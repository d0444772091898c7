package article

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pfassina/folio/internal/markdown"
)

var (
	// A match never spans lines past its opening delimiter, so an unclosed
	// "<" in prose is left as text.
	directiveRe = regexp.MustCompile(`\{%\s*.*?%\}`)
	markupRe    = regexp.MustCompile(`<[^>\n]*>`)
)

// Excerpter synthesizes a summary from a document body.
type Excerpter struct {
	opts   ExcerptOptions
	parser *markdown.Parser
}

func NewExcerpter(opts ExcerptOptions) *Excerpter {
	if opts.Words <= 0 {
		opts.Words = DefaultOptions().Excerpt.Words
	}
	if opts.Chars <= 0 {
		opts.Chars = DefaultOptions().Excerpt.Chars
	}
	return &Excerpter{opts: opts, parser: markdown.NewParser()}
}

// Excerpt returns a plain-text summary of body, or "" when it has no text.
func (e *Excerpter) Excerpt(body string) string {
	text := Clean(body)

	switch e.opts.Policy {
	case ExcerptFirstLine:
		return truncate(firstLine(text), e.opts.Chars, e.opts.Suffix)
	case ExcerptFirstParagraph:
		return truncate(e.parser.Parse([]byte(text)).FirstParagraph, e.opts.Chars, e.opts.Suffix)
	default:
		return firstWords(text, e.opts.Words, e.opts.Suffix)
	}
}

// Clean removes template directives ({% ... %}) and markup tags.
func Clean(body string) string {
	text := directiveRe.ReplaceAllString(body, "")
	return markupRe.ReplaceAllString(text, "")
}

func firstWords(text string, n int, suffix string) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + suffix
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// truncate cuts s to max runes, suffix included.
func truncate(s string, max int, suffix string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	cut := max - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace) + suffix
}
