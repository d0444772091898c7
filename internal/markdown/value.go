package markdown

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Value is a front matter value: a Scalar, a Sequence or a Mapping.
type Value interface {
	String() string
	isValue()
}

// Scalar is a single YAML scalar. Tag is the resolved short tag
// (!!str, !!int, !!timestamp, !!null, ...).
type Scalar struct {
	Tag  string
	Text string
}

func (Scalar) isValue() {}

func (s Scalar) String() string { return s.Text }

// IsNull reports whether the scalar is an explicit or implicit null.
func (s Scalar) IsNull() bool { return s.Tag == "!!null" }

// Time decodes a native YAML timestamp. It reports false for any
// scalar that YAML did not resolve as a timestamp, including quoted dates.
func (s Scalar) Time() (time.Time, bool) {
	if s.Tag != "!!timestamp" {
		return time.Time{}, false
	}
	var t time.Time
	n := yaml.Node{Kind: yaml.ScalarNode, Tag: s.Tag, Value: s.Text}
	if err := n.Decode(&t); err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Sequence is a YAML sequence.
type Sequence []Value

func (Sequence) isValue() {}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Mapping is a YAML mapping that remembers key order.
type Mapping struct {
	keys   []string
	values map[string]Value
}

func (Mapping) isValue() {}

func (m Mapping) String() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = k + ": " + m.values[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in document order.
func (m Mapping) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m Mapping) Len() int { return len(m.keys) }

// Set stores v under key. A repeated key keeps its first position and
// takes the last value.
func (m *Mapping) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// fromNode converts a decoded YAML node tree into Values.
func fromNode(n *yaml.Node) Value {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Scalar{Tag: "!!null"}
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return Scalar{Tag: "!!null"}
		}
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		seq := make(Sequence, 0, len(n.Content))
		for _, c := range n.Content {
			seq = append(seq, fromNode(c))
		}
		return seq
	case yaml.MappingNode:
		var m Mapping
		for i := 0; i+1 < len(n.Content); i += 2 {
			m.Set(n.Content[i].Value, fromNode(n.Content[i+1]))
		}
		return m
	case yaml.ScalarNode:
		return Scalar{Tag: n.ShortTag(), Text: n.Value}
	}
	return Scalar{Tag: "!!null"}
}
