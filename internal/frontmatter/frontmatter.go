// Package frontmatter reads and rewrites YAML frontmatter on Markdown
// notes. Edits go through the yaml.v3 node tree so that updating one
// property keeps the remaining keys, their order, and any comments
// intact, and never touches the note body.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Doc is a note split into its frontmatter mapping and Markdown body.
type Doc struct {
	mapping *yaml.Node // mapping node; nil when the note has no frontmatter
	body    string
}

// Parse splits raw note content into frontmatter and body. A note without
// leading --- fences has no frontmatter. Invalid YAML inside the fences is
// an error: rewriting on top of it would corrupt the note.
func Parse(data []byte) (*Doc, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return &Doc{body: string(data)}, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat everything as body.
		return &Doc{body: string(data)}, nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var root yaml.Node
	if err := yaml.Unmarshal(yamlBlock, &root); err != nil {
		return nil, fmt.Errorf("frontmatter: parse: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty fences.
		return &Doc{body: body}, nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter: not a mapping")
	}
	return &Doc{mapping: mapping, body: body}, nil
}

// Value returns the decoded value of the named property, or false when
// the property is absent.
func (d *Doc) Value(key string) (any, bool) {
	node := d.valueNode(key)
	if node == nil {
		return nil, false
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// Has reports whether the named property exists.
func (d *Doc) Has(key string) bool {
	return d.valueNode(key) != nil
}

// Set creates or overwrites the named property. New keys are appended
// after the existing ones.
func (d *Doc) Set(key string, value any) error {
	var val yaml.Node
	if err := val.Encode(value); err != nil {
		return fmt.Errorf("frontmatter: encode %s: %w", key, err)
	}

	if existing := d.valueNode(key); existing != nil {
		*existing = val
		return nil
	}

	if d.mapping == nil {
		d.mapping = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	d.mapping.Content = append(d.mapping.Content, keyNode, &val)
	return nil
}

// Render serializes the note back to bytes. A note that never had and
// never gained frontmatter renders as its body alone.
func (d *Doc) Render() ([]byte, error) {
	if d.mapping == nil || len(d.mapping.Content) == 0 {
		return []byte(d.body), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.mapping); err != nil {
		return nil, fmt.Errorf("frontmatter: render: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: render: %w", err)
	}

	var out bytes.Buffer
	out.WriteString(delim + "\n")
	out.Write(buf.Bytes())
	out.WriteString(delim + "\n")
	if d.body != "" {
		out.WriteString("\n")
		out.WriteString(d.body)
	}
	return out.Bytes(), nil
}

// valueNode returns the value node paired with key, or nil.
func (d *Doc) valueNode(key string) *yaml.Node {
	if d.mapping == nil {
		return nil
	}
	content := d.mapping.Content
	for i := 0; i+1 < len(content); i += 2 {
		if content[i].Value == key {
			return content[i+1]
		}
	}
	return nil
}
