// Package view is a minimal element tree for component output.
//
// Components return *Node values built with El and Text. Children may be
// nodes, strings, reactive handles (resolved when the tree is built) or
// slices of those:
//
//	view.El("p", view.Attrs{"class": "count"}, "count: ", count)
//
// String renders the tree to HTML.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/ripple/pkg/reactive"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Plain text node
	KindFragment            // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Attrs holds element attributes.
type Attrs map[string]string

// Node is an element, text or fragment.
type Node struct {
	Kind     Kind    `json:"kind"`
	Tag      string  `json:"tag,omitempty"`
	Attrs    Attrs   `json:"attrs,omitempty"`
	Children []*Node `json:"children,omitempty"`
	Text     string  `json:"text,omitempty"`
}

// El creates an element node.
func El(tag string, attrs Attrs, children ...any) *Node {
	return &Node{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Children: Nodes(children...),
	}
}

// Text creates a text node from any value. Reactive handles are resolved.
func Text(v any) *Node {
	v = reactive.Resolve(v)
	if s, ok := v.(string); ok {
		return &Node{Kind: KindText, Text: s}
	}
	return &Node{Kind: KindText, Text: fmt.Sprint(v)}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	return &Node{Kind: KindFragment, Children: Nodes(children...)}
}

// Nodes converts children to nodes. nil values are dropped and slices are
// flattened.
func Nodes(children ...any) []*Node {
	var out []*Node
	for _, c := range children {
		switch v := c.(type) {
		case nil:
		case *Node:
			if v != nil {
				out = append(out, v)
			}
		case []*Node:
			for _, n := range v {
				if n != nil {
					out = append(out, n)
				}
			}
		case []any:
			out = append(out, Nodes(v...)...)
		default:
			out = append(out, Text(v))
		}
	}
	return out
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// String renders n as HTML.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		b.WriteString(escapeHTML(n.Text))
	case KindFragment:
		for _, c := range n.Children {
			c.write(b)
		}
	case KindElement:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(escapeAttr(n.Attrs[k]))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidElements[n.Tag] {
			return
		}
		for _, c := range n.Children {
			c.write(b)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}
