// Model of Homer dashboard configuration (config.yml).
//
// Only the parts dashsync touches are modelled: groups of `services` and
// their `items`. Everything else in the file (title, theme, links, comments,
// unknown keys of groups and items) is carried through load and save as it is.
package homer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dashsync/dashsync/pkg/utils/yamler"
	"gopkg.in/yaml.v3"
)

var ErrMalformed = errors.New("homer: malformed document")

// Document is a Homer configuration.
type Document struct {
	// groups of services. Order is kept on save.
	Services []Group

	// document node as it is read. nil for a Document built in memory.
	doc *yaml.Node

	// top level mapping in doc.
	root *yaml.Node
}

// Group is an element of `services`.
type Group struct {
	Name  string
	Items []Entry

	node *yaml.Node
}

// Entry is an element of `items` of a Group.
type Entry struct {
	Name     string
	Logo     string
	Subtitle string
	Tag      string
	URL      string
	Target   string

	node *yaml.Node
}

// Count returns the number of entries in all groups.
func (d *Document) Count() int {
	n := 0
	for _, g := range d.Services {
		n += len(g.Items)
	}
	return n
}

// Decode reads a Document from r.
//
// The document should be a mapping with a `services` sequence.
// Otherwise, it returns an error wrapping ErrMalformed.
func Decode(r io.Reader) (*Document, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty", ErrMalformed)
		}
		return nil, errors.Join(ErrMalformed, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping (line %d)", ErrMalformed, root.Line)
	}

	services, ok := yamler.Lookup(root, "services")
	if !ok {
		return nil, fmt.Errorf("%w: no services", ErrMalformed)
	}

	var groups []Group
	if err := services.Decode(&groups); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if root == &doc {
		return &Document{Services: groups, root: root}, nil
	}
	return &Document{Services: groups, doc: &doc, root: root}, nil
}

// Encode writes d to w in YAML.
func (d *Document) Encode(w io.Writer) error {
	buf := bytes.NewBuffer(nil)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.node()); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.Copy(w, buf)
	return err
}

func (d *Document) node() *yaml.Node {
	root := d.root
	if root == nil {
		root = yamler.Map()
	}

	services := make([]*yaml.Node, 0, len(d.Services))
	for _, g := range d.Services {
		services = append(services, g.toNode())
	}

	seq := yamler.Seq(services...)
	if orig, ok := yamler.Lookup(root, "services"); ok && orig.Kind == yaml.SequenceNode {
		s := *orig
		s.Content = services
		seq = &s
	}

	patched := yamler.Patched(root, yamler.Entry("services", seq))
	if d.doc == nil {
		return patched
	}
	doc := *d.doc
	doc.Content = []*yaml.Node{patched}
	return &doc
}

func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Name  string  `yaml:"name"`
		Items []Entry `yaml:"items"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*g = Group{Name: raw.Name, Items: raw.Items, node: node}
	return nil
}

func (g Group) MarshalYAML() (any, error) {
	return g.toNode(), nil
}

func (g Group) toNode() *yaml.Node {
	items := make([]*yaml.Node, 0, len(g.Items))
	for _, e := range g.Items {
		items = append(items, e.toNode())
	}

	if g.node == nil {
		return yamler.Map(
			yamler.Entry("name", yamler.Text(g.Name)),
			yamler.Entry("items", yamler.Seq(items...)),
		)
	}

	seq := yamler.Seq(items...)
	if orig, ok := yamler.Lookup(g.node, "items"); ok && orig.Kind == yaml.SequenceNode {
		s := *orig
		s.Content = items
		seq = &s
	}
	entries := scalarChanges(g.node, field{"name", g.Name})
	return yamler.Patched(g.node, append(entries, yamler.Entry("items", seq))...)
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Name     string `yaml:"name"`
		Logo     string `yaml:"logo"`
		Subtitle string `yaml:"subtitle"`
		Tag      string `yaml:"tag"`
		URL      string `yaml:"url"`
		Target   string `yaml:"target"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = Entry{
		Name:     raw.Name,
		Logo:     raw.Logo,
		Subtitle: raw.Subtitle,
		Tag:      raw.Tag,
		URL:      raw.URL,
		Target:   raw.Target,
		node:     node,
	}
	return nil
}

func (e Entry) MarshalYAML() (any, error) {
	return e.toNode(), nil
}

func (e Entry) toNode() *yaml.Node {
	fields := []field{
		{"name", e.Name},
		{"logo", e.Logo},
		{"subtitle", e.Subtitle},
		{"tag", e.Tag},
		{"url", e.URL},
		{"target", e.Target},
	}

	if e.node == nil {
		entries := make([]yamler.MapEntry, 0, len(fields))
		for _, f := range fields {
			entries = append(entries, yamler.Entry(f.key, yamler.Text(f.value)))
		}
		return yamler.Map(entries...)
	}

	return yamler.Patched(e.node, scalarChanges(e.node, fields...)...)
}

type field struct {
	key   string
	value string
}

// scalarChanges returns entries to be patched onto mapping node m.
//
// Unchanged values are left out, so that their style and comments are kept.
// Keys which m does not have are left out too, unless they get a value.
func scalarChanges(m *yaml.Node, fields ...field) []yamler.MapEntry {
	entries := []yamler.MapEntry{}
	for _, f := range fields {
		orig, ok := yamler.Lookup(m, f.key)
		if ok && orig.Kind == yaml.ScalarNode {
			null := orig.ShortTag() == "!!null"
			if (null && f.value == "") || (!null && orig.Value == f.value) {
				continue
			}
		}
		if ok || f.value != "" {
			entries = append(entries, yamler.Entry(f.key, yamler.Text(f.value)))
		}
	}
	return entries
}
