// Helpers to build and patch *yaml.Node trees.
//
// Nodes made by this package are meant to be spliced into documents read
// with yaml.v3, so that untouched parts (comments, key order, unknown keys)
// survive a load/save round trip.
package yamler

import (
	"gopkg.in/yaml.v3"
)

// Text returns a string scalar.
//
// The scalar is tagged !!str, so that "" or "true" are emitted quoted.
func Text(value string, options ...Option) *yaml.Node {
	n := new(yaml.Node)
	n.SetString(value)
	for _, opt := range options {
		n = opt(n)
	}
	return n
}

type Option func(*yaml.Node) *yaml.Node

func WithStyle(s yaml.Style) Option {
	return func(n *yaml.Node) *yaml.Node {
		n.Style = s
		return n
	}
}

func WithHeadComment(comment string) Option {
	return func(n *yaml.Node) *yaml.Node {
		n.HeadComment = comment
		return n
	}
}

func Seq(s ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: s}
}

type MapEntry struct {
	Key   *yaml.Node
	Value *yaml.Node
}

func Entry(k string, v *yaml.Node) MapEntry {
	return MapEntry{Key: Text(k), Value: v}
}

func Map(e ...MapEntry) *yaml.Node {
	content := make([]*yaml.Node, 0, len(e)*2)
	for _, ee := range e {
		content = append(content, ee.Key, ee.Value)
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: content}
}

// Lookup returns the value of key in mapping node m.
//
// It returns (nil, false) when m is not a mapping or has no such key.
func Lookup(m *yaml.Node, key string) (*yaml.Node, bool) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1], true
		}
	}
	return nil, false
}

// Patched returns a shallow copy of mapping node m
// where values of the given keys are replaced.
//
// Keys not in m are appended in the order of entries.
// m itself is not modified.
func Patched(m *yaml.Node, entries ...MapEntry) *yaml.Node {
	cp := *m
	cp.Content = append([]*yaml.Node{}, m.Content...)

	for _, e := range entries {
		replaced := false
		for i := 0; i+1 < len(cp.Content); i += 2 {
			if cp.Content[i].Value == e.Key.Value {
				cp.Content[i+1] = e.Value
				replaced = true
				break
			}
		}
		if !replaced {
			cp.Content = append(cp.Content, e.Key, e.Value)
		}
	}
	return &cp
}
