// Package serializer renders a Markdown syntax tree as GitHub Flavored
// Markdown text.
//
// Rendering is a single enter/leave walk over the tree. Every open node has a
// frame collecting the rendered text of its children; closing a node folds its
// frame into the parent's. Output is deterministic and contains no leading or
// trailing blank lines.
package serializer

import (
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/yaklabco/htmlmd/pkg/mdast"
)

// minColumnWidth is the narrowest table column, so the delimiter row always
// has at least three dashes.
const minColumnWidth = 3

// Serialize renders root as Markdown.
func Serialize(root *mdast.Node) string {
	s := &serializer{stack: []*frame{{}}}

	//nolint:errcheck,revive // callbacks never fail
	mdast.WalkWithContext(root, s.enter, s.leave)

	base := s.stack[0]
	base.flush()
	return strings.Trim(strings.Join(base.blocks, "\n\n"), "\n")
}

// frame collects the output of one open node.
type frame struct {
	node *mdast.Node

	// blocks holds rendered child blocks, or cell texts for a table row.
	blocks []string

	// rows holds rendered cell texts for a table.
	rows [][]string

	// inline holds rendered inline content.
	inline strings.Builder

	// alternate selects the other bullet or delimiter for a list that
	// directly follows a list of the same kind.
	alternate bool
}

// flush moves pending inline content into blocks.
func (f *frame) flush() {
	if f.inline.Len() == 0 {
		return
	}
	f.blocks = append(f.blocks, f.inline.String())
	f.inline.Reset()
}

type serializer struct {
	stack []*frame

	// flat counts open table cells and headings, where line breaks cannot
	// be written.
	flat int
}

func (s *serializer) top() *frame {
	return s.stack[len(s.stack)-1]
}

func (s *serializer) addBlock(text string) {
	f := s.top()
	f.flush()
	f.blocks = append(f.blocks, text)
}

func (s *serializer) enter(n *mdast.Node) error {
	switch n.Kind {
	case mdast.NodeText:
		s.top().inline.WriteString(escapeText(n.Text()))
		return nil
	case mdast.NodeCodeSpan:
		s.top().inline.WriteString(codeSpan(n.Text()))
		return mdast.SkipChildren
	case mdast.NodeImage:
		s.top().inline.WriteString(image(n))
		return mdast.SkipChildren
	case mdast.NodeHardBreak:
		if s.flat > 0 {
			s.top().inline.WriteByte(' ')
		} else {
			s.top().inline.WriteString("\\\n")
		}
		return mdast.SkipChildren
	case mdast.NodeCodeBlock:
		s.addBlock(codeBlock(n))
		return mdast.SkipChildren
	case mdast.NodeThematicBreak:
		s.addBlock(thematicBreak(n))
		return mdast.SkipChildren
	case mdast.NodeHeading:
		s.flat++
	case mdast.NodeTableCell:
		s.flat++
	default:
	}

	f := &frame{node: n}
	if n.Kind == mdast.NodeList {
		f.alternate = alternateList(n)
	}
	s.stack = append(s.stack, f)
	return nil
}

func (s *serializer) leave(n *mdast.Node) error {
	f := s.top()
	if f.node != n || len(s.stack) == 1 {
		return nil
	}
	s.stack = s.stack[:len(s.stack)-1]
	parent := s.top()

	switch n.Kind {
	case mdast.NodeStrong:
		wrapInline(parent, f, "**")
	case mdast.NodeEmphasis:
		wrapInline(parent, f, "*")
	case mdast.NodeDelete:
		wrapInline(parent, f, "~~")
	case mdast.NodeLink:
		parent.inline.WriteString("[" + f.inline.String() + "](" + destination(n) + ")")
	case mdast.NodeParagraph:
		f.flush()
		s.addBlock(paragraph(strings.Join(f.blocks, "\n\n")))
	case mdast.NodeHeading:
		s.flat--
		f.flush()
		s.addBlock(heading(n, strings.Join(f.blocks, " ")))
	case mdast.NodeBlockquote:
		f.flush()
		s.addBlock(blockquote(f.blocks))
	case mdast.NodeListItem:
		f.flush()
		s.addBlock(strings.Join(f.blocks, "\n\n"))
	case mdast.NodeList:
		s.addBlock(list(n, f))
	case mdast.NodeTableCell:
		s.flat--
		f.flush()
		parent.blocks = append(parent.blocks, escapePipes(strings.Join(f.blocks, " ")))
	case mdast.NodeTableRow:
		parent.rows = append(parent.rows, f.blocks)
	case mdast.NodeTable:
		s.addBlock(table(n, f.rows))
	default:
		f.flush()
		for _, b := range f.blocks {
			s.addBlock(b)
		}
	}
	return nil
}

// wrapInline closes an emphasis-like node. Directly after a '*' run the
// underscore form is used, since "*a**b*" would read as one span.
func wrapInline(parent, f *frame, marker string) {
	content := f.inline.String()
	if content == "" {
		return
	}
	if marker[0] == '*' && strings.HasSuffix(parent.inline.String(), "*") {
		marker = strings.Repeat("_", len(marker))
	}
	parent.inline.WriteString(marker + content + marker)
}

// alternateList reports whether n follows an odd-length run of lists of the
// same kind, which would otherwise merge with it.
func alternateList(n *mdast.Node) bool {
	ordered := isOrdered(n)
	count := 0
	for prev := n.Prev; prev != nil && prev.Kind == mdast.NodeList && isOrdered(prev) == ordered; prev = prev.Prev {
		count++
	}
	return count%2 == 1
}

func isOrdered(n *mdast.Node) bool {
	return n.Block != nil && n.Block.List != nil && n.Block.List.Ordered
}

func list(n *mdast.Node, f *frame) string {
	f.flush()

	start := 1
	if n.Block != nil && n.Block.List != nil {
		start = n.Block.List.StartNumber
	}
	bullet, delimiter := "*", "."
	if f.alternate {
		bullet, delimiter = "-", ")"
	}

	items := n.Children()
	var sb strings.Builder
	for i, content := range f.blocks {
		var item *mdast.Node
		if i < len(items) {
			item = items[i]
		}

		if i > 0 {
			if spread(item) || spread(items[i-1]) {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString("\n")
			}
		}

		marker := bullet + " "
		if isOrdered(n) {
			marker = strconv.Itoa(start+i) + delimiter + " "
		}
		sb.WriteString(listItem(marker, item, content))
	}
	return sb.String()
}

func spread(item *mdast.Node) bool {
	return item != nil && item.Block != nil && item.Block.ListItem != nil && item.Block.ListItem.Spread
}

func listItem(marker string, item *mdast.Node, content string) string {
	if item != nil && item.Block != nil && item.Block.ListItem != nil && item.Block.ListItem.Checked != nil {
		if *item.Block.ListItem.Checked {
			content = "[x] " + content
		} else {
			content = "[ ] " + content
		}
	}
	if content == "" {
		return strings.TrimRight(marker, " ")
	}
	return marker + indent(content, strings.Repeat(" ", len(marker)))
}

// indent prefixes every line after the first with pad. Empty lines stay empty.
func indent(content, pad string) string {
	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func blockquote(blocks []string) string {
	lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func paragraph(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = escapeLineStart(line)
	}
	return strings.Join(lines, "\n")
}

func heading(n *mdast.Node, content string) string {
	level := 1
	if n.Block != nil {
		level = min(max(n.Block.HeadingLevel, 1), 6)
	}
	prefix := strings.Repeat("#", level)
	if content == "" {
		return prefix
	}
	return prefix + " " + escapeClosingHashes(content)
}

// escapeClosingHashes keeps a trailing run of '#' from being read as the
// closing sequence of an ATX heading.
func escapeClosingHashes(content string) string {
	trimmed := strings.TrimRight(content, "#")
	if trimmed == content {
		return content
	}
	if trimmed != "" && !strings.HasSuffix(trimmed, " ") {
		return content
	}
	return trimmed + `\` + content[len(trimmed):]
}

func codeBlock(n *mdast.Node) string {
	var lang, value string
	if n.Block != nil && n.Block.CodeBlock != nil {
		lang, value = n.Block.CodeBlock.Lang, n.Block.CodeBlock.Value
	}

	fence := strings.Repeat("`", max(3, longestRun(value, '`')+1))
	if value == "" {
		return fence + lang + "\n" + fence
	}
	return fence + lang + "\n" + value + "\n" + fence
}

func thematicBreak(n *mdast.Node) string {
	marker := byte('*')
	if n.Block != nil && n.Block.RuleMarker != 0 {
		marker = n.Block.RuleMarker
	}
	return strings.Repeat(string(marker), 3)
}

func codeSpan(value string) string {
	if value == "" {
		return ""
	}
	fence := strings.Repeat("`", longestRun(value, '`')+1)
	if value[0] == '`' || value[len(value)-1] == '`' ||
		(value[0] == ' ' && value[len(value)-1] == ' ' && strings.TrimSpace(value) != "") {
		value = " " + value + " "
	}
	return fence + value + fence
}

func image(n *mdast.Node) string {
	return "![" + escapeText(n.Text()) + "](" + destination(n) + ")"
}

// destination renders the "(url "title")" part of a link or image.
func destination(n *mdast.Node) string {
	if n.Inline == nil || n.Inline.Link == nil {
		return ""
	}
	link := n.Inline.Link

	url := encodeDestination(link.Destination)
	if strings.ContainsAny(url, "()<>") {
		url = "<" + strings.NewReplacer("<", `\<`, ">", `\>`).Replace(url) + ">"
	}
	if link.Title == "" {
		return url
	}
	title := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(link.Title)
	return url + ` "` + title + `"`
}

// encodeDestination percent-encodes spaces and control characters, which
// end a bare destination and are not allowed inside <...>.
func encodeDestination(url string) string {
	if strings.IndexFunc(url, func(r rune) bool { return r <= ' ' || r == 0x7f }) < 0 {
		return url
	}

	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	for i := range len(url) {
		c := url[i]
		if c <= ' ' || c == 0x7f {
			sb.WriteByte('%')
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0xf])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func table(n *mdast.Node, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row))
	}

	widths := make([]int, columns)
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], uniseg.GraphemeClusterCount(cell))
		}
	}

	var align []mdast.Align
	if n.Block != nil && n.Block.Table != nil {
		align = n.Block.Table.Align
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, tableRow(rows[0], widths))
	lines = append(lines, delimiterRow(widths, align))
	for _, row := range rows[1:] {
		lines = append(lines, tableRow(row, widths))
	}
	return strings.Join(lines, "\n")
}

func tableRow(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteString(" ")
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", width-uniseg.GraphemeClusterCount(cell)))
		sb.WriteString(" |")
	}
	return sb.String()
}

func delimiterRow(widths []int, align []mdast.Align) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, width := range widths {
		a := mdast.AlignNone
		if i < len(align) {
			a = align[i]
		}
		sb.WriteString(" ")
		switch a {
		case mdast.AlignLeft:
			sb.WriteString(":" + strings.Repeat("-", width-1))
		case mdast.AlignRight:
			sb.WriteString(strings.Repeat("-", width-1) + ":")
		case mdast.AlignCenter:
			sb.WriteString(":" + strings.Repeat("-", width-2) + ":")
		default:
			sb.WriteString(strings.Repeat("-", width))
		}
		sb.WriteString(" |")
	}
	return sb.String()
}

// longestRun returns the length of the longest run of c in s.
func longestRun(s string, c byte) int {
	longest, current := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}
	return longest
}
