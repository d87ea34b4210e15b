package mdast

// NewNode returns a detached node of kind with no attributes.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

func NewDocument() *Node { return NewNode(NodeDocument) }

// NewText returns a text node. The value is stored unescaped.
func NewText(value string) *Node {
	return &Node{Kind: NodeText, Inline: &InlineAttrs{Text: value}}
}

// NewCodeSpan returns inline code holding value verbatim.
func NewCodeSpan(value string) *Node {
	return &Node{Kind: NodeCodeSpan, Inline: &InlineAttrs{Text: value}}
}

// NewHeading returns a heading; level is clamped to 1-6.
func NewHeading(level int) *Node {
	return &Node{Kind: NodeHeading, Block: &BlockAttrs{HeadingLevel: min(max(level, 1), 6)}}
}

// NewList returns a list that is tight until an item is marked spread.
func NewList(ordered bool, start int) *Node {
	return &Node{Kind: NodeList, Block: &BlockAttrs{
		List: &ListAttrs{Ordered: ordered, StartNumber: start, Tight: true},
	}}
}

func NewListItem() *Node {
	return &Node{Kind: NodeListItem, Block: &BlockAttrs{ListItem: &ListItemAttrs{}}}
}

// NewCodeBlock returns a fenced code block; lang may be empty.
func NewCodeBlock(lang, value string) *Node {
	return &Node{Kind: NodeCodeBlock, Block: &BlockAttrs{CodeBlock: &CodeBlockAttrs{Lang: lang, Value: value}}}
}

// NewThematicBreak returns a break drawn with marker, one of '*', '-', '_'.
func NewThematicBreak(marker byte) *Node {
	return &Node{Kind: NodeThematicBreak, Block: &BlockAttrs{RuleMarker: marker}}
}

// NewTable returns a table with one alignment per column.
func NewTable(align []Align) *Node {
	return &Node{Kind: NodeTable, Block: &BlockAttrs{Table: &TableAttrs{Align: align}}}
}

// NewLink returns a link; an empty title is omitted when rendered.
func NewLink(destination, title string) *Node {
	return &Node{Kind: NodeLink, Inline: &InlineAttrs{
		Link: &LinkAttrs{Destination: destination, Title: title},
	}}
}

// NewImage returns an image; alt is kept as the node's text.
func NewImage(destination, title, alt string) *Node {
	return &Node{Kind: NodeImage, Inline: &InlineAttrs{
		Text: alt,
		Link: &LinkAttrs{Destination: destination, Title: title},
	}}
}

// detach removes n from its parent, if any.
func detach(n *Node) {
	if n.Parent != nil {
		RemoveChild(n.Parent, n)
	}
}

// link splices a detached n into parent between prev and next, either of
// which may be nil at the ends.
func link(parent, n, prev, next *Node) {
	n.Parent, n.Prev, n.Next = parent, prev, next

	if prev == nil {
		parent.FirstChild = n
	} else {
		prev.Next = n
	}
	if next == nil {
		parent.LastChild = n
	} else {
		next.Prev = n
	}
}

// AppendChild makes child the last child of parent, moving it if it is
// already attached elsewhere.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	detach(child)
	link(parent, child, parent.LastChild, nil)
}

// InsertBefore places n immediately before sibling. A detached sibling is a
// no-op.
func InsertBefore(sibling, n *Node) {
	if sibling == nil || n == nil || sibling.Parent == nil || sibling == n {
		return
	}
	detach(n)
	link(sibling.Parent, n, sibling.Prev, sibling)
}

// InsertAfter places n immediately after sibling. A detached sibling is a
// no-op.
func InsertAfter(sibling, n *Node) {
	if sibling == nil || n == nil || sibling.Parent == nil || sibling == n {
		return
	}
	detach(n)
	link(sibling.Parent, n, sibling, sibling.Next)
}

// RemoveChild detaches child. It does nothing unless child belongs to parent.
func RemoveChild(parent, child *Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}

	if child.Prev == nil {
		parent.FirstChild = child.Next
	} else {
		child.Prev.Next = child.Next
	}
	if child.Next == nil {
		parent.LastChild = child.Prev
	} else {
		child.Next.Prev = child.Prev
	}
	child.Parent, child.Prev, child.Next = nil, nil, nil
}

// Unwrap replaces n with its children, in order.
func Unwrap(n *Node) {
	if n == nil || n.Parent == nil {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.Next
		InsertBefore(n, child)
		child = next
	}
	RemoveChild(n.Parent, n)
}
