// Package hast provides the HTML syntax tree produced by the parser and
// consumed by the transformer.
//
// A tree is single-rooted and acyclic: every node is owned by exactly one
// parent, and children are stored in document order.
package hast

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// NodeType classifies a HAST node.
type NodeType uint8

// Node types.
const (
	RootNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

// String returns a human-readable name for the node type.
func (t NodeType) String() string {
	switch t {
	case RootNode:
		return "root"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is a single node in the HTML tree.
type Node struct {
	// Type identifies what kind of node this is.
	Type NodeType

	// Tag is the lower-case tag name for ElementNode.
	Tag string

	// Atom is the interned tag name, or zero for unknown tags.
	Atom atom.Atom

	// Attrs holds element attributes keyed by lower-case name.
	Attrs map[string]string

	// Value holds the content of TextNode and CommentNode.
	Value string

	Parent   *Node
	Children []*Node
}

// NewRoot creates an empty root node.
func NewRoot() *Node {
	return &Node{Type: RootNode}
}

// NewElement creates an element node with the given tag and attributes.
func NewElement(tag string, attrs map[string]string) *Node {
	tag = strings.ToLower(tag)
	return &Node{
		Type:  ElementNode,
		Tag:   tag,
		Atom:  atom.Lookup([]byte(tag)),
		Attrs: attrs,
	}
}

// NewText creates a text node.
func NewText(value string) *Node {
	return &Node{Type: TextNode, Value: value}
}

// NewComment creates a comment node.
func NewComment(value string) *Node {
	return &Node{Type: CommentNode, Value: value}
}

// AppendChild appends child to parent, detaching it from any previous parent.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}
	child.Parent = parent
	parent.Children = append(parent.Children, child)
}

// RemoveChild detaches child from parent.
func RemoveChild(parent, child *Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
	child.Parent = nil
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrOr returns the named attribute or fallback when absent.
func (n *Node) AttrOr(name, fallback string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return fallback
}

// HasClass reports whether the class attribute contains class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// Classes returns the whitespace-separated entries of the class attribute.
func (n *Node) Classes() []string {
	v, ok := n.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

// IsElement reports whether n is an element with one of the given tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// FirstElementChild returns the first child element with the given tag, or nil.
func (n *Node) FirstElementChild(tag string) *Node {
	for _, c := range n.Children {
		if c.IsElement(tag) {
			return c
		}
	}
	return nil
}

// TextContent returns the concatenated value of all descendant text nodes.
func TextContent(n *Node) string {
	var sb strings.Builder
	//nolint:errcheck,revive // the callback never fails
	Walk(n, func(node *Node) error {
		if node.Type == TextNode {
			sb.WriteString(node.Value)
		}
		return nil
	})
	return sb.String()
}
