// Package html provides a forgiving HTML parser producing a hast tree.
//
// The parser is a tokenizer state machine followed by a tree builder with a
// small set of recovery rules: unmatched end tags are ignored, unterminated
// tags run to the end of input, implied end tags close paragraphs, list items
// and table cells, and a stray '<' is kept as text.
package html

import (
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/yaklabco/htmlmd/pkg/hast"
)

// Options controls parsing.
type Options struct {
	// Fragment parses input as a fragment whose nodes become direct children
	// of the root. When false, input is treated as a full document and the
	// root receives the children of <body>.
	Fragment bool

	// MaxDepth bounds element nesting. Zero means hast.DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions returns fragment parsing with the default depth limit.
func DefaultOptions() Options {
	return Options{Fragment: true, MaxDepth: hast.DefaultMaxDepth}
}

// voidElements never have children.
//
//nolint:gochecknoglobals // Read-only lookup table.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Param: true, atom.Source: true,
	atom.Track: true, atom.Wbr: true, atom.Keygen: true,
}

// closesParagraph lists start tags that implicitly end an open <p>.
//
//nolint:gochecknoglobals // Read-only lookup table.
var closesParagraph = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Details: true, atom.Div: true, atom.Dl: true, atom.Fieldset: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true, atom.Ul: true,
	atom.Li: true, atom.Dd: true, atom.Dt: true,
}

// headings are h1 through h6.
//
//nolint:gochecknoglobals // Read-only lookup table.
var headings = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// preserveWhitespace lists elements whose text keeps its whitespace.
//
//nolint:gochecknoglobals // Read-only lookup table.
var preserveWhitespace = map[atom.Atom]bool{
	atom.Pre: true, atom.Code: true, atom.Textarea: true, atom.Listing: true, atom.Plaintext: true,
}

// defaultScope stops end-tag and implied-end-tag searches.
//
//nolint:gochecknoglobals // Read-only lookup table.
var defaultScope = map[atom.Atom]bool{
	atom.Html: true, atom.Table: true, atom.Td: true, atom.Th: true,
	atom.Caption: true, atom.Template: true, atom.Button: true, atom.Marquee: true, atom.Object: true,
}

// builder assembles tokens into a hast tree.
type builder struct {
	root     *hast.Node
	open     []*hast.Node
	preserve int
	maxDepth int

	// skipNewline drops one leading LF after <pre>, <listing> and <textarea>.
	skipNewline bool
}

// Parse parses src into a hast tree. It only fails when element nesting
// exceeds opts.MaxDepth, returning *hast.DepthExceededError.
func Parse(src string, opts Options) (*hast.Node, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = hast.DefaultMaxDepth
	}

	src = normalizeNewlines(src)

	b := &builder{
		root:     hast.NewRoot(),
		maxDepth: opts.MaxDepth,
	}

	for _, tok := range Tokenize(src) {
		var err error
		switch tok.Kind {
		case TokStartTag:
			err = b.startTag(tok)
		case TokEndTag:
			b.endTag(tok)
		case TokText:
			b.text(tok.Data)
		case TokComment:
			hast.AppendChild(b.current(), hast.NewComment(tok.Data))
			b.skipNewline = false
		}
		if err != nil {
			return nil, err
		}
	}

	if opts.Fragment {
		return b.root, nil
	}
	return documentBody(b.root), nil
}

func (b *builder) current() *hast.Node {
	if len(b.open) == 0 {
		return b.root
	}
	return b.open[len(b.open)-1]
}

func (b *builder) startTag(tok Token) error {
	el := hast.NewElement(tok.Data, tok.Attrs)
	b.skipNewline = false

	b.closeImplied(el.Atom)

	hast.AppendChild(b.current(), el)

	if voidElements[el.Atom] || tok.SelfClosing {
		return nil
	}

	if len(b.open) >= b.maxDepth {
		return &hast.DepthExceededError{Limit: b.maxDepth}
	}
	b.open = append(b.open, el)
	if preserveWhitespace[el.Atom] {
		b.preserve++
	}

	switch el.Atom {
	case atom.Pre, atom.Listing, atom.Textarea:
		b.skipNewline = true
	}

	return nil
}

// closeImplied pops elements that the incoming start tag implicitly ends.
func (b *builder) closeImplied(incoming atom.Atom) {
	if closesParagraph[incoming] {
		b.closeInScope(atom.P, defaultScope)
	}

	switch incoming {
	case atom.Li:
		b.closeInScope(atom.Li, withScope(atom.Ul, atom.Ol))
	case atom.Dt, atom.Dd:
		if !b.closeInScope(atom.Dt, withScope(atom.Dl)) {
			b.closeInScope(atom.Dd, withScope(atom.Dl))
		}
	case atom.Tr:
		b.closeInScope(atom.Tr, tableScope)
	case atom.Td, atom.Th:
		if !b.closeInScope(atom.Td, withScope(atom.Tr)) {
			b.closeInScope(atom.Th, withScope(atom.Tr))
		}
	case atom.Thead, atom.Tbody, atom.Tfoot:
		for _, section := range []atom.Atom{atom.Thead, atom.Tbody, atom.Tfoot} {
			b.closeInScope(section, tableScope)
		}
	case atom.Option:
		b.closeInScope(atom.Option, defaultScope)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		if headings[b.current().Atom] {
			b.pop()
		}
	}
}

//nolint:gochecknoglobals // Read-only lookup table.
var tableScope = map[atom.Atom]bool{atom.Html: true, atom.Table: true, atom.Template: true}

// withScope returns defaultScope extended with extra boundaries.
func withScope(extra ...atom.Atom) map[atom.Atom]bool {
	scope := make(map[atom.Atom]bool, len(defaultScope)+len(extra))
	for k := range defaultScope {
		scope[k] = true
	}
	for _, a := range extra {
		scope[a] = true
	}
	return scope
}

// closeInScope pops up to and including the nearest open element with the
// given atom, unless a scope boundary is met first. It reports whether an
// element was closed.
func (b *builder) closeInScope(target atom.Atom, scope map[atom.Atom]bool) bool {
	for i := len(b.open) - 1; i >= 0; i-- {
		el := b.open[i]
		if el.Atom == target {
			b.popTo(i)
			return true
		}
		if scope[el.Atom] {
			return false
		}
	}
	return false
}

func (b *builder) endTag(tok Token) {
	b.skipNewline = false

	if tok.Data == "br" {
		// </br> is treated as <br>.
		hast.AppendChild(b.current(), hast.NewElement("br", nil))
		return
	}

	target := atom.Lookup([]byte(tok.Data))
	scope := endTagScope(target)

	for i := len(b.open) - 1; i >= 0; i-- {
		el := b.open[i]
		if el.Tag == tok.Data {
			b.popTo(i)
			return
		}
		if scope[el.Atom] {
			return
		}
	}
	// Unmatched end tag: ignored.
}

// endTagScope returns the boundaries an end tag may not cross.
func endTagScope(target atom.Atom) map[atom.Atom]bool {
	switch target {
	case atom.Li:
		return withScope(atom.Ul, atom.Ol)
	case atom.Dt, atom.Dd:
		return withScope(atom.Dl)
	case atom.Td, atom.Th, atom.Tr, atom.Thead, atom.Tbody, atom.Tfoot, atom.Caption:
		return tableScope
	case atom.Table, atom.Html:
		return nil
	default:
		return defaultScope
	}
}

// popTo pops open elements down to and including index i.
func (b *builder) popTo(i int) {
	for len(b.open) > i {
		b.pop()
	}
}

func (b *builder) pop() {
	if len(b.open) == 0 {
		return
	}
	el := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	if preserveWhitespace[el.Atom] {
		b.preserve--
	}
}

func (b *builder) text(value string) {
	if b.skipNewline {
		value = strings.TrimPrefix(value, "\n")
		b.skipNewline = false
	}
	if b.preserve == 0 {
		value = collapseWhitespace(value)
	}
	if value == "" {
		return
	}

	parent := b.current()
	if n := len(parent.Children); n > 0 && parent.Children[n-1].Type == hast.TextNode {
		parent.Children[n-1].Value += value
		return
	}
	hast.AppendChild(parent, hast.NewText(value))
}

// collapseWhitespace replaces each run of HTML whitespace with one space.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpace(c) {
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

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// documentBody re-roots a parsed document at its <body>. Without a body the
// <html> children minus <head> are used; without <html> the tree is returned
// unchanged.
func documentBody(root *hast.Node) *hast.Node {
	container := findElement(root, "body")
	if container == nil {
		container = findElement(root, "html")
		if container == nil {
			return root
		}
	}

	out := hast.NewRoot()
	for _, child := range container.Children {
		if child.IsElement("head") {
			continue
		}
		child.Parent = out
		out.Children = append(out.Children, child)
	}
	return out
}

// findElement returns the first element with the given tag in document order.
func findElement(root *hast.Node, tag string) *hast.Node {
	var found *hast.Node
	//nolint:errcheck,revive // errFound only stops the walk
	hast.Walk(root, func(n *hast.Node) error {
		if n.IsElement(tag) {
			found = n
			return errFound
		}
		return nil
	})
	return found
}

type foundError struct{}

func (foundError) Error() string { return "found" }

//nolint:gochecknoglobals // Sentinel error.
var errFound error = foundError{}
