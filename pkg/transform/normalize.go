package transform

import (
	"strings"

	"github.com/yaklabco/htmlmd/pkg/mdast"
)

// normalize finishes the tree bottom-up. Each node only rearranges its own
// children, except inline wrappers, which move edge spaces out to siblings.
func (r *run) normalize() {
	//nolint:errcheck,revive // the callback never fails
	mdast.WalkWithContext(r.doc, nil, func(n *mdast.Node) error {
		switch n.Kind {
		case mdast.NodeParagraph, mdast.NodeHeading, mdast.NodeTableCell:
			normalizeInline(n)
		case mdast.NodeDocument, mdast.NodeBlockquote:
			normalizeContainer(n)
		case mdast.NodeListItem:
			normalizeContainer(n)
			n.Block.ListItem.Spread = isSpread(n)
		case mdast.NodeList:
			tight := true
			for item := n.FirstChild; item != nil; item = item.Next {
				if item.Block != nil && item.Block.ListItem != nil && item.Block.ListItem.Spread {
					tight = false
				}
			}
			n.Block.List.Tight = tight
		case mdast.NodeTable:
			r.normalizeTable(n)
		default:
		}
		return nil
	})
}

// isSpread reports whether a list item holds a nested list or more than one
// block.
func isSpread(item *mdast.Node) bool {
	if item.ChildCount() > 1 {
		return true
	}
	for child := item.FirstChild; child != nil; child = child.Next {
		if child.Kind == mdast.NodeList {
			return true
		}
	}
	return false
}

// normalizeContainer lifts stray table content in front of its table, wraps
// runs of inline children in paragraphs and drops empty blocks.
func normalizeContainer(c *mdast.Node) {
	for child := c.FirstChild; child != nil; child = child.Next {
		if child.Kind != mdast.NodeTable {
			continue
		}
		for stray := child.FirstChild; stray != nil; {
			next := stray.Next
			if stray.Kind != mdast.NodeTableRow {
				mdast.InsertBefore(child, stray)
			}
			stray = next
		}
	}

	var para *mdast.Node
	for child := c.FirstChild; child != nil; {
		next := child.Next
		if child.IsInline() {
			if para == nil {
				para = mdast.NewNode(mdast.NodeParagraph)
				mdast.InsertBefore(child, para)
			}
			mdast.AppendChild(para, child)
		} else if para != nil {
			normalizeInline(para)
			para = nil
		}
		child = next
	}
	if para != nil {
		normalizeInline(para)
	}

	for child := c.FirstChild; child != nil; {
		next := child.Next
		if isEmptyBlock(child) {
			mdast.RemoveChild(c, child)
		}
		child = next
	}
}

func isEmptyBlock(n *mdast.Node) bool {
	switch n.Kind {
	case mdast.NodeParagraph, mdast.NodeHeading, mdast.NodeList, mdast.NodeBlockquote, mdast.NodeTable:
		return !n.HasChildren()
	default:
		return false
	}
}

func isWrapper(n *mdast.Node) bool {
	switch n.Kind {
	case mdast.NodeStrong, mdast.NodeEmphasis, mdast.NodeDelete, mdast.NodeLink:
		return true
	default:
		return false
	}
}

// normalizeInline cleans the inline content of a paragraph, heading or
// cell: whitespace runs collapse across text nodes, edges are trimmed,
// spaces around hard breaks go, and empty wrappers disappear.
func normalizeInline(block *mdast.Node) {
	wrappers := mdast.FindAll(block, isWrapper)
	for i := len(wrappers) - 1; i >= 0; i-- {
		hoistSpaces(wrappers[i])
	}

	leaves := mdast.FindAll(block, func(n *mdast.Node) bool {
		switch n.Kind {
		case mdast.NodeText, mdast.NodeCodeSpan, mdast.NodeImage, mdast.NodeHardBreak:
			return true
		default:
			return false
		}
	})

	afterSpace := true
	for i, leaf := range leaves {
		switch leaf.Kind {
		case mdast.NodeText:
			s := collapseSpaces(leaf.Inline.Text)
			if afterSpace {
				s = strings.TrimLeft(s, " ")
			}
			leaf.Inline.Text = s
			if s != "" {
				afterSpace = strings.HasSuffix(s, " ")
			}
		case mdast.NodeHardBreak:
			trimTrailing(leaves[:i])
			afterSpace = true
		default:
			afterSpace = false
		}
	}
	trimTrailing(leaves)

	removeEdgeBreaks(leaves)

	for _, leaf := range leaves {
		if leaf.Kind == mdast.NodeText && leaf.Inline.Text == "" && leaf.Parent != nil {
			mdast.RemoveChild(leaf.Parent, leaf)
		}
	}

	// Post-order, so a wrapper emptied by its children's removal goes too.
	wrappers = mdast.FindAll(block, isWrapper)
	for i := len(wrappers) - 1; i >= 0; i-- {
		w := wrappers[i]
		if w.Kind != mdast.NodeLink && !w.HasChildren() && w.Parent != nil {
			mdast.RemoveChild(w.Parent, w)
		}
	}
}

// hoistSpaces moves leading and trailing whitespace of a wrapper's content
// outside it, so "<b> x </b>" becomes " **x** ".
func hoistSpaces(w *mdast.Node) {
	if first := edgeText(w, true); first != nil {
		trimmed := strings.TrimLeft(first.Inline.Text, spaceChars)
		if trimmed != first.Inline.Text {
			first.Inline.Text = trimmed
			mdast.InsertBefore(w, mdast.NewText(" "))
		}
	}
	if last := edgeText(w, false); last != nil {
		trimmed := strings.TrimRight(last.Inline.Text, spaceChars)
		if trimmed != last.Inline.Text {
			last.Inline.Text = trimmed
			mdast.InsertAfter(w, mdast.NewText(" "))
		}
	}
}

// edgeText returns the first (or last) text leaf of w, skipping empty text
// leaves, or nil when the edge is not text.
func edgeText(w *mdast.Node, first bool) *mdast.Node {
	n := w
	for {
		var child *mdast.Node
		if first {
			child = n.FirstChild
			for child != nil && child.Kind == mdast.NodeText && child.Inline.Text == "" {
				child = child.Next
			}
		} else {
			child = n.LastChild
			for child != nil && child.Kind == mdast.NodeText && child.Inline.Text == "" {
				child = child.Prev
			}
		}
		switch {
		case child == nil:
			return nil
		case child.Kind == mdast.NodeText:
			return child
		case isWrapper(child):
			n = child
		default:
			return nil
		}
	}
}

// trimTrailing strips trailing spaces from the text leaves at the end of
// leaves, stopping at the first non-text or non-blank leaf.
func trimTrailing(leaves []*mdast.Node) {
	for i := len(leaves) - 1; i >= 0; i-- {
		leaf := leaves[i]
		if leaf.Kind != mdast.NodeText {
			return
		}
		leaf.Inline.Text = strings.TrimRight(leaf.Inline.Text, " ")
		if leaf.Inline.Text != "" {
			return
		}
	}
}

// removeEdgeBreaks drops hard breaks with no content before or after them.
func removeEdgeBreaks(leaves []*mdast.Node) {
	isBlank := func(n *mdast.Node) bool {
		return n.Kind == mdast.NodeText && n.Inline.Text == ""
	}
	for _, leaf := range leaves {
		if isBlank(leaf) {
			continue
		}
		if leaf.Kind != mdast.NodeHardBreak {
			break
		}
		mdast.RemoveChild(leaf.Parent, leaf)
	}
	for i := len(leaves) - 1; i >= 0; i-- {
		leaf := leaves[i]
		if isBlank(leaf) || leaf.Parent == nil {
			continue
		}
		if leaf.Kind != mdast.NodeHardBreak {
			break
		}
		mdast.RemoveChild(leaf.Parent, leaf)
	}
}

const spaceChars = " \t\n\r\f"

// collapseSpaces replaces each run of ASCII whitespace with one space.
func collapseSpaces(s string) string {
	if !strings.ContainsAny(s, spaceChars) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(spaceChars, c) >= 0 {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteByte(c)
	}
	return sb.String()
}
