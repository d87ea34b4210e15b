package mdast

// BlockAttrs carries the data of block nodes. Only the field matching the
// node's kind is set.
type BlockAttrs struct {
	// HeadingLevel is 1-6.
	HeadingLevel int

	// HeadingID is the heading's anchor slug.
	HeadingID string

	List      *ListAttrs
	ListItem  *ListItemAttrs
	CodeBlock *CodeBlockAttrs
	Table     *TableAttrs

	// RuleMarker is the thematic break character ('*', '-' or '_').
	RuleMarker byte
}

// ListAttrs describes a NodeList.
type ListAttrs struct {
	Ordered     bool
	StartNumber int

	// Tight is cleared as soon as one item is spread.
	Tight bool
}

// ListItemAttrs describes a NodeListItem.
type ListItemAttrs struct {
	// Spread is true when the item is separated from its siblings by blank lines.
	Spread bool

	// Checked is non-nil for GFM task list items.
	Checked *bool
}

// CodeBlockAttrs describes a fenced NodeCodeBlock. Lang is the info string
// and may be empty.
type CodeBlockAttrs struct {
	Lang  string
	Value string
}

// Align is a table column alignment.
type Align uint8

// Column alignments.
const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the alignment name.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "none"
	}
}

// TableAttrs holds one alignment per column of a NodeTable.
type TableAttrs struct {
	Align []Align
}

// InlineAttrs carries the data of inline nodes.
type InlineAttrs struct {
	// Text holds the text content for NodeText and NodeCodeSpan, and the alt
	// text for NodeImage.
	Text string

	// Link holds link attributes for NodeLink and NodeImage.
	Link *LinkAttrs
}

// LinkAttrs is the target of a NodeLink or NodeImage. An empty Title is
// omitted from the output.
type LinkAttrs struct {
	Destination string
	Title       string
}
