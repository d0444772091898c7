package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parser wraps goldmark for body processing.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(),
	}
}

// Heading represents a markdown heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-based line number within the body
}

// ParsedBody contains what the indexer reads from a document body.
type ParsedBody struct {
	Headings       []Heading
	FirstParagraph string
}

// Parse parses a markdown body.
func (p *Parser) Parse(body []byte) *ParsedBody {
	doc := p.md.Parser().Parse(text.NewReader(body))

	parsed := &ParsedBody{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if t := plainText(node, body); t != "" {
				parsed.Headings = append(parsed.Headings, Heading{
					Level: node.Level,
					Text:  t,
					Line:  lineOf(node, body),
				})
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if parsed.FirstParagraph == "" {
				parsed.FirstParagraph = plainText(node, body)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return parsed
}

// plainText flattens the inline content of n, dropping raw HTML and
// collapsing whitespace.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func lineOf(n ast.Node, src []byte) int {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}
