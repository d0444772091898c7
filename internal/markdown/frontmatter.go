package markdown

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned when a header block exists but is not a YAML mapping.
var ErrMalformed = errors.New("malformed front matter")

const marker = "---"

// Frontmatter is the parsed header block of a document.
type Frontmatter struct {
	Mapping
	Raw string // header text between the markers
}

// Split separates a leading --- delimited header block from the body.
// ok is false when the text does not open with a marker line or the
// block is never closed; body is then the original text.
func Split(content string) (header, body string, ok bool) {
	rest := strings.TrimPrefix(content, "\ufeff")

	first, rest, more := cutLine(rest)
	if !isMarker(first) || !more {
		return "", content, false
	}

	var lines []string
	for {
		line, next, more := cutLine(rest)
		if isMarker(line) {
			return strings.Join(lines, "\n"), next, true
		}
		if !more {
			return "", content, false
		}
		lines = append(lines, line)
		rest = next
	}
}

// ParseFrontMatter decodes a header block. An empty or null header is an
// empty mapping.
func ParseFrontMatter(header string) (Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return Mapping{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind == 0 {
		return Mapping{}, nil
	}

	switch v := fromNode(&doc).(type) {
	case Mapping:
		return v, nil
	case Scalar:
		if v.IsNull() {
			return Mapping{}, nil
		}
	}
	return Mapping{}, fmt.Errorf("%w: header is not a mapping", ErrMalformed)
}

// Extract splits and parses the front matter of a markdown document.
// It returns a nil Frontmatter when the document has none. On a parse error
// the body is the whole document.
func Extract(content []byte) (*Frontmatter, string, error) {
	text := string(content)
	header, body, ok := Split(text)
	if !ok {
		return nil, text, nil
	}

	fields, err := ParseFrontMatter(header)
	if err != nil {
		return nil, text, err
	}
	return &Frontmatter{Mapping: fields, Raw: header}, body, nil
}

func isMarker(line string) bool {
	return strings.TrimRight(line, " \t") == marker
}

// cutLine returns the first line of s without its terminator, the text after
// the terminator, and whether a newline was found.
func cutLine(s string) (line, rest string, more bool) {
	line, rest, more = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, more
}
