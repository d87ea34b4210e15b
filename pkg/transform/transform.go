// Package transform converts a hast tree into a Markdown syntax tree.
//
// Elements are dispatched through a tag-keyed Rules table. The walk keeps an
// explicit stack of open MDAST targets; a second pass over the result groups
// loose inline content into paragraphs, normalizes whitespace, computes list
// tightness and squares up tables.
package transform

import (
	"strings"

	"github.com/yaklabco/htmlmd/pkg/hast"
	"github.com/yaklabco/htmlmd/pkg/mdast"
)

// Options controls the transformation.
type Options struct {
	// Rule is the thematic break character: '*', '-' or '_'.
	Rule byte

	// AutolinkHeadings wraps heading content in a link to the heading slug.
	AutolinkHeadings bool

	// DetectLanguage infers a fence language for code blocks without a
	// language-X class.
	DetectLanguage bool

	// MaxDepth bounds element nesting. Zero means hast.DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions returns the default transformation options.
func DefaultOptions() Options {
	return Options{Rule: '*', MaxDepth: hast.DefaultMaxDepth}
}

// Transformer converts hast trees using a dispatch table.
// Register must not be called concurrently with Transform.
type Transformer struct {
	rules Rules
	opts  Options
}

// New creates a Transformer with the default rules.
func New(opts Options) *Transformer {
	if opts.Rule == 0 {
		opts.Rule = '*'
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = hast.DefaultMaxDepth
	}
	return &Transformer{rules: DefaultRules(), opts: opts}
}

// Register installs rule for tag, replacing any existing rule.
func (t *Transformer) Register(tag string, rule Rule) {
	t.rules[strings.ToLower(tag)] = rule
}

// Transform converts root using the default rules.
func Transform(root *hast.Node, opts Options) (*mdast.Node, error) {
	return New(opts).Transform(root)
}

// Transform converts root into a new MDAST document. The only error is
// *hast.DepthExceededError when root nests deeper than Options.MaxDepth.
func (t *Transformer) Transform(root *hast.Node) (*mdast.Node, error) {
	r := &run{
		t:             t,
		doc:           mdast.NewDocument(),
		ignoring:      make(map[*hast.Node]bool),
		slugs:         NewSlugger(),
		cells:         make(map[*mdast.Node]cellMeta),
		headRows:      make(map[*mdast.Node]bool),
		implicitLists: make(map[*mdast.Node]bool),
		implicitRows:  make(map[*mdast.Node]bool),
	}

	if err := hast.WalkWithContext(root, r.enter, r.leave); err != nil {
		return nil, err
	}

	r.normalize()
	return r.doc, nil
}

// frame is an open element during the walk.
type frame struct {
	src *hast.Node

	// target receives the element's children.
	target *mdast.Node

	// node is the MDAST node created for the element, if any.
	node *mdast.Node

	// spacer appends a space to target when the element closes.
	spacer bool

	// breakRun ends the inline run in a container when the element closes.
	breakRun bool
}

// cellMeta carries the HTML attributes of a table cell into normalization.
type cellMeta struct {
	colspan int
	rowspan int
	align   mdast.Align
}

// run holds the state of a single Transform call.
type run struct {
	t      *Transformer
	doc    *mdast.Node
	frames []frame
	depth  int

	// ignoring marks hast parents inside a rehype:ignore range.
	ignoring map[*hast.Node]bool

	slugs         *Slugger
	cells         map[*mdast.Node]cellMeta
	headRows      map[*mdast.Node]bool
	implicitLists map[*mdast.Node]bool
	implicitRows  map[*mdast.Node]bool
}

const (
	ignoreStart = "rehype:ignore:start"
	ignoreEnd   = "rehype:ignore:end"
)

func (r *run) target() *mdast.Node {
	if len(r.frames) == 0 {
		return r.doc
	}
	return r.frames[len(r.frames)-1].target
}

func (r *run) enter(n *hast.Node) error {
	switch n.Type {
	case hast.RootNode:
		return nil
	case hast.CommentNode:
		r.comment(n)
		return nil
	case hast.TextNode, hast.ElementNode:
	}

	if n.Parent != nil && r.ignoring[n.Parent] {
		return hast.SkipChildren
	}

	if n.Type == hast.TextNode {
		r.text(r.target(), n.Value)
		return nil
	}
	return r.element(r.target(), n)
}

func (r *run) comment(n *hast.Node) {
	if n.Parent == nil {
		return
	}
	switch strings.TrimSpace(n.Value) {
	case ignoreStart:
		r.ignoring[n.Parent] = true
	case ignoreEnd:
		delete(r.ignoring, n.Parent)
	}
}

func (r *run) text(target *mdast.Node, value string) {
	if value == "" {
		return
	}
	switch target.Kind {
	case mdast.NodeList, mdast.NodeTable, mdast.NodeTableRow:
		if strings.TrimSpace(value) == "" {
			return
		}
	default:
	}

	node := mdast.NewText(value)
	mdast.AppendChild(r.place(target, node), node)
}

func (r *run) element(target *mdast.Node, el *hast.Node) error {
	r.depth++
	if r.depth > r.t.opts.MaxDepth {
		return &hast.DepthExceededError{Limit: r.t.opts.MaxDepth}
	}

	rule, ok := r.t.rules[el.Tag]
	if !ok {
		rule = unwrap
	}
	res := rule(&Context{Options: r.t.opts, Parent: target, run: r}, el)

	fr := frame{src: el, target: target}
	action, node := res.Action, res.Node

	var dest *mdast.Node
	if node != nil && (action == Descend || action == Leaf) {
		dest = r.place(target, node)
		switch {
		case node.IsBlock() && acceptsInline(dest):
			// A block inside inline content keeps only its text.
			fr.spacer = true
			fr.target = dest
			if action == Leaf {
				action = Drop
			} else {
				action = Unwrap
			}
			node = nil
		case node.Kind == mdast.NodeLink && insideLink(dest):
			if action == Leaf {
				for child := node.FirstChild; child != nil; {
					next := child.Next
					mdast.AppendChild(dest, child)
					child = next
				}
				action = Drop
			} else {
				action = Unwrap
			}
			fr.target = dest
			node = nil
		}
	}

	if action == Unwrap && res.Block {
		if acceptsInline(target) {
			fr.spacer = true
		} else if target.IsContainer() {
			// An empty paragraph ends the current inline run; normalization
			// removes it.
			mdast.AppendChild(target, mdast.NewNode(mdast.NodeParagraph))
			fr.breakRun = true
		}
	}

	switch action {
	case Drop:
		r.frames = append(r.frames, fr)
		return hast.SkipChildren
	case Unwrap:
		r.frames = append(r.frames, fr)
		return nil
	case Leaf:
		mdast.AppendChild(dest, node)
		r.frames = append(r.frames, fr)
		return hast.SkipChildren
	case Descend:
		mdast.AppendChild(dest, node)
		fr.node = node
		fr.target = node
		r.frames = append(r.frames, fr)
		return nil
	}
	return nil
}

func (r *run) leave(n *hast.Node) error {
	if n.Type != hast.ElementNode || len(r.frames) == 0 {
		return nil
	}
	fr := r.frames[len(r.frames)-1]
	if fr.src != n {
		return nil
	}
	r.frames = r.frames[:len(r.frames)-1]
	r.depth--

	switch {
	case fr.spacer:
		mdast.AppendChild(fr.target, mdast.NewText(" "))
	case fr.breakRun:
		mdast.AppendChild(fr.target, mdast.NewNode(mdast.NodeParagraph))
	}

	if fr.node != nil && fr.node.Kind == mdast.NodeHeading {
		r.finishHeading(fr.node, n)
	}
	return nil
}

// place returns the node that should receive node when it is added under
// target, creating implicit list items, lists, rows and cells as needed.
func (r *run) place(target, node *mdast.Node) *mdast.Node {
	switch target.Kind {
	case mdast.NodeList:
		if node.Kind == mdast.NodeListItem {
			return target
		}
		return lastOrNew(target, mdast.NodeListItem, mdast.NewListItem)
	case mdast.NodeTable:
		switch node.Kind {
		case mdast.NodeTableRow:
			return target
		case mdast.NodeTableCell:
			if last := target.LastChild; last != nil && r.implicitRows[last] {
				return last
			}
			row := mdast.NewNode(mdast.NodeTableRow)
			r.implicitRows[row] = true
			mdast.AppendChild(target, row)
			return row
		default:
			// Moved in front of the table during normalization.
			return target
		}
	case mdast.NodeTableRow:
		if node.Kind == mdast.NodeTableCell {
			return target
		}
		return lastOrNew(target, mdast.NodeTableCell, func() *mdast.Node {
			return mdast.NewNode(mdast.NodeTableCell)
		})
	default:
	}

	if node.Kind == mdast.NodeListItem && target.IsContainer() {
		last := target.LastChild
		for last != nil && last.Kind == mdast.NodeText && strings.TrimSpace(last.Text()) == "" {
			last = last.Prev
		}
		if last != nil && r.implicitLists[last] {
			return last
		}
		l := mdast.NewList(false, 1)
		r.implicitLists[l] = true
		mdast.AppendChild(target, l)
		return l
	}
	return target
}

func lastOrNew(parent *mdast.Node, kind mdast.NodeKind, create func() *mdast.Node) *mdast.Node {
	if last := parent.LastChild; last != nil && last.Kind == kind {
		return last
	}
	n := create()
	mdast.AppendChild(parent, n)
	return n
}

func insideLink(n *mdast.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Kind == mdast.NodeLink {
			return true
		}
	}
	return false
}

// finishHeading assigns the heading slug and, when enabled, links the
// heading content to it.
func (r *run) finishHeading(h *mdast.Node, el *hast.Node) {
	text := strings.TrimSpace(mdast.TextContent(h))
	if id := strings.TrimSpace(el.AttrOr("id", "")); id != "" {
		h.Block.HeadingID = r.slugs.Reserve(id)
	} else {
		h.Block.HeadingID = r.slugs.Unique(Slug(text))
	}

	if !r.t.opts.AutolinkHeadings || !h.HasChildren() {
		return
	}
	if text == "" && len(mdast.FindByKind(h, mdast.NodeImage)) == 0 {
		return
	}

	for _, inner := range mdast.FindByKind(h, mdast.NodeLink) {
		mdast.Unwrap(inner)
	}
	link := mdast.NewLink("#"+h.Block.HeadingID, "")
	for child := h.FirstChild; child != nil; {
		next := child.Next
		mdast.AppendChild(link, child)
		child = next
	}
	mdast.AppendChild(h, link)
}
