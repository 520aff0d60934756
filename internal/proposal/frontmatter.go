// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package proposal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// preambleOrder is the mandated key order for the front-matter preamble.
// Keys not listed here are serialized after these, in their original order.
var preambleOrder = []string{
	"eip",
	"title",
	"description",
	"author",
	"discussions-to",
	"status",
	"last-call-deadline",
	"type",
	"category",
	"created",
	"requires",
	"withdrawal-reason",
}

// Document is one front-matter-delimited proposal file: a metadata block
// between two delimiter lines, a blank line, and the body text.
type Document struct {
	FrontMatter *FrontMatter
	Body        string
}

var documentRE = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n?(.*)$`)

// ParseDocument splits a document into its front matter and body
func ParseDocument(text string) (*Document, error) {
	m := documentRE.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("document has no front matter block")
	}

	fm, err := parseFrontMatter(m[1])
	if err != nil {
		return nil, err
	}

	return &Document{
		FrontMatter: fm,
		Body:        strings.TrimLeft(m[2], "\n"),
	}, nil
}

// Render reassembles the document: delimiter, serialized front matter,
// closing delimiter, blank line, body unchanged.
func (d *Document) Render() string {
	return delimiter + "\n" + d.FrontMatter.Serialize() + delimiter + "\n\n" + d.Body
}

type field struct {
	key   string
	value *yaml.Node
}

// FrontMatter is an ordered mapping of front-matter keys to YAML values.
// Recognized keys are serialized in the fixed preamble order; unknown keys
// pass through after them in their original order.
type FrontMatter struct {
	fields []field
}

func parseFrontMatter(block string) (*FrontMatter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	fm := &FrontMatter{}
	if len(doc.Content) == 0 {
		return fm, nil
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("front matter is not a mapping")
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		fm.fields = append(fm.fields, field{
			key:   mapping.Content[i].Value,
			value: mapping.Content[i+1],
		})
	}

	return fm, nil
}

// Has reports whether a key is present
func (fm *FrontMatter) Has(key string) bool {
	return fm.Node(key) != nil
}

// Node returns the value node for a key, or nil if absent
func (fm *FrontMatter) Node(key string) *yaml.Node {
	for _, f := range fm.fields {
		if f.key == key {
			return f.value
		}
	}
	return nil
}

// Get returns the scalar text of a key's value, or "" if absent
func (fm *FrontMatter) Get(key string) string {
	if n := fm.Node(key); n != nil {
		return n.Value
	}
	return ""
}

// Set replaces a key's value in place, or appends the key if absent
func (fm *FrontMatter) Set(key string, value *yaml.Node) {
	for i, f := range fm.fields {
		if f.key == key {
			fm.fields[i].value = value
			return
		}
	}
	fm.fields = append(fm.fields, field{key: key, value: value})
}

// Keys returns the keys in their current order
func (fm *FrontMatter) Keys() []string {
	keys := make([]string, 0, len(fm.fields))
	for _, f := range fm.fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Serialize produces the canonical front-matter text: preamble keys in the
// fixed order, pass-through keys after them, one unwrapped line per key, no
// anchors or references.
func (fm *FrontMatter) Serialize() string {
	var b strings.Builder
	emitted := make(map[string]bool, len(fm.fields))

	for _, key := range preambleOrder {
		if n := fm.Node(key); n != nil {
			writeField(&b, key, n)
			emitted[key] = true
		}
	}
	for _, f := range fm.fields {
		if !emitted[f.key] {
			writeField(&b, f.key, f.value)
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, key string, n *yaml.Node) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(formatValue(key, n))
	b.WriteByte('\n')
}

// midnightRE matches a calendar date with an optional literal midnight-UTC
// time suffix, which the mandated plain-date format strips.
var midnightRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:[Tt ]00:00:00(?:\.\d+)?(?:Z|[+-]00:00)?)?$`)

func formatValue(key string, n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		return formatCollection(n)
	}

	v := n.Value

	switch key {
	case "eip":
		// The identifier is emitted as a bare integer when numeric.
		if _, err := strconv.Atoi(v); err == nil {
			return v
		}
	case "requires":
		// A single requirement is an integer; a comma-separated list stays
		// a string.
		if !strings.Contains(v, ",") {
			if _, err := strconv.Atoi(v); err == nil {
				return v
			}
		}
	case "created", "last-call-deadline":
		if m := midnightRE.FindStringSubmatch(v); m != nil {
			return m[1]
		}
	}

	switch n.Tag {
	case "!!int", "!!float", "!!bool", "!!timestamp":
		if m := midnightRE.FindStringSubmatch(v); m != nil {
			return m[1]
		}
		return v
	case "!!null":
		return "null"
	}

	return quoteIfNeeded(v)
}

// formatCollection emits a non-scalar value in flow style on a single line.
// Front matter values are almost always scalars; this keeps the rare
// sequence value legal without multi-line output.
func formatCollection(n *yaml.Node) string {
	flow := *n
	flow.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&flow)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\n")
}

// quoteIfNeeded emits a string scalar in plain style when YAML allows it,
// falling back to a double-quoted scalar. Quoting never wraps: the output is
// always a single line.
func quoteIfNeeded(s string) string {
	if !needsQuoting(s) {
		return s
	}
	return strconv.Quote(s)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	switch s[0] {
	case '!', '&', '*', '?', '|', '>', '%', '@', '`', '"', '\'', '#', '{', '}', '[', ']', ',', ':':
		return true
	}
	if s == "-" || strings.HasPrefix(s, "- ") {
		return true
	}
	if strings.Contains(s, ": ") || strings.HasSuffix(s, ":") {
		return true
	}
	if strings.Contains(s, " #") {
		return true
	}
	if strings.ContainsAny(s, "\n\t") {
		return true
	}
	switch strings.ToLower(s) {
	case "null", "~", "true", "false", "yes", "no", "on", "off":
		return true
	}
	// A string that would re-parse as a number must stay quoted.
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

func stringNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v}
}

// identifierNode builds the node for the identifier field: an integer for
// numbered proposals, a string for draft mnemonics.
func identifierNode(id string) *yaml.Node {
	if _, err := strconv.Atoi(id); err == nil {
		return intNode(id)
	}
	return stringNode(id)
}
