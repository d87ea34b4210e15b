package mdast

// NodeKind classifies the type of an AST node.
type NodeKind uint16

// Node kinds for block-level and inline-level Markdown elements.
const (
	NodeDocument NodeKind = iota

	// Block-level nodes.
	NodeParagraph
	NodeHeading
	NodeList
	NodeListItem
	NodeBlockquote
	NodeCodeBlock
	NodeThematicBreak
	NodeTable
	NodeTableRow
	NodeTableCell

	// Inline-level nodes.
	NodeText
	NodeEmphasis
	NodeStrong
	NodeDelete
	NodeCodeSpan
	NodeLink
	NodeImage
	NodeHardBreak
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = [...]string{
	NodeDocument:      "Document",
	NodeParagraph:     "Paragraph",
	NodeHeading:       "Heading",
	NodeList:          "List",
	NodeListItem:      "ListItem",
	NodeBlockquote:    "Blockquote",
	NodeCodeBlock:     "CodeBlock",
	NodeThematicBreak: "ThematicBreak",
	NodeTable:         "Table",
	NodeTableRow:      "TableRow",
	NodeTableCell:     "TableCell",
	NodeText:          "Text",
	NodeEmphasis:      "Emphasis",
	NodeStrong:        "Strong",
	NodeDelete:        "Delete",
	NodeCodeSpan:      "CodeSpan",
	NodeLink:          "Link",
	NodeImage:         "Image",
	NodeHardBreak:     "HardBreak",
}

// String returns the kind name.
func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node represents a single node in the Markdown AST.
// Nodes form a tree structure with parent/child/sibling relationships.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Tree structure pointers.
	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Prev       *Node
	Next       *Node

	// Block holds attributes for block-level nodes.
	Block *BlockAttrs

	// Inline holds attributes for inline-level nodes.
	Inline *InlineAttrs
}

// IsBlock returns true if this is a block-level node.
func (n *Node) IsBlock() bool {
	switch n.Kind {
	case NodeDocument, NodeParagraph, NodeHeading, NodeList, NodeListItem,
		NodeBlockquote, NodeCodeBlock, NodeThematicBreak, NodeTable, NodeTableRow, NodeTableCell:
		return true
	default:
		return false
	}
}

// IsInline returns true if this is an inline-level node.
func (n *Node) IsInline() bool {
	switch n.Kind {
	case NodeText, NodeEmphasis, NodeStrong, NodeDelete, NodeCodeSpan, NodeLink,
		NodeImage, NodeHardBreak:
		return true
	default:
		return false
	}
}

// IsContainer reports whether the node holds block children (as opposed to
// inline content).
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case NodeDocument, NodeListItem, NodeBlockquote:
		return true
	default:
		return false
	}
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return n.FirstChild != nil
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	count := 0
	for child := n.FirstChild; child != nil; child = child.Next {
		count++
	}
	return count
}

// Children returns a slice of all direct children.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}

// Text returns the literal text of a Text or CodeSpan node, or the alt text
// of an Image.
func (n *Node) Text() string {
	if n.Inline == nil {
		return ""
	}
	return n.Inline.Text
}
