package transform

import (
	"strconv"
	"strings"

	"github.com/yaklabco/htmlmd/pkg/hast"
	"github.com/yaklabco/htmlmd/pkg/langdetect"
	"github.com/yaklabco/htmlmd/pkg/mdast"
)

// Action tells the transformer what to do with an element.
type Action uint8

// Rule actions.
const (
	// Unwrap transforms the element's children into the current parent.
	Unwrap Action = iota

	// Drop discards the element and its subtree.
	Drop

	// Descend appends Result.Node and transforms the children into it.
	Descend

	// Leaf appends Result.Node and skips the children.
	Leaf
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Unwrap:
		return "unwrap"
	case Drop:
		return "drop"
	case Descend:
		return "descend"
	case Leaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Result is the outcome of a Rule.
type Result struct {
	Action Action

	// Node is the MDAST node produced for Descend and Leaf.
	Node *mdast.Node

	// Block marks an unwrapped element as a block of its own: its content
	// does not run into the surrounding inline text.
	Block bool
}

// Rule maps one HTML element to an MDAST result.
type Rule func(ctx *Context, el *hast.Node) Result

// Rules is a dispatch table keyed by lower-case tag name. Tags without a
// rule are unwrapped.
type Rules map[string]Rule

// Context is passed to every rule.
type Context struct {
	Options Options

	// Parent is the MDAST node that will receive the result.
	Parent *mdast.Node

	run *run
}

// Inline reports whether the parent only accepts inline content.
func (c *Context) Inline() bool {
	return acceptsInline(c.Parent)
}

func acceptsInline(n *mdast.Node) bool {
	switch n.Kind {
	case mdast.NodeParagraph, mdast.NodeHeading, mdast.NodeTableCell:
		return true
	default:
		return n.IsInline()
	}
}

//nolint:gochecknoglobals // Read-only tag lists.
var (
	droppedTags = []string{
		"script", "style", "head", "meta", "title", "link", "base", "noscript", "template",
		"iframe", "object", "svg", "canvas", "select", "button", "form",
	}

	blockUnwrapTags = []string{
		"html", "body", "div", "section", "article", "main", "header", "footer", "nav", "aside",
		"figure", "figcaption", "address", "center", "details", "summary", "dl", "dt", "dd",
	}

	inlineUnwrapTags = []string{
		"span", "font", "u", "ins", "mark", "small", "sub", "sup", "abbr", "cite", "dfn", "time",
		"label", "thead", "tbody", "tfoot",
	}
)

// DefaultRules returns a fresh copy of the built-in dispatch table.
func DefaultRules() Rules {
	rules := Rules{
		"p":          descend(mdast.NodeParagraph),
		"strong":     descend(mdast.NodeStrong),
		"b":          descend(mdast.NodeStrong),
		"em":         descend(mdast.NodeEmphasis),
		"i":          descend(mdast.NodeEmphasis),
		"del":        descend(mdast.NodeDelete),
		"s":          descend(mdast.NodeDelete),
		"strike":     descend(mdast.NodeDelete),
		"blockquote": descend(mdast.NodeBlockquote),
		"caption":    descend(mdast.NodeParagraph),
		"code":       inlineCode,
		"kbd":        inlineCode,
		"samp":       inlineCode,
		"tt":         inlineCode,
		"var":        inlineCode,
		"a":          anchor,
		"img":        image,
		"video":      media,
		"audio":      media,
		"pre":        preformatted,
		"ul":         list,
		"ol":         list,
		"li":         listItem,
		"input":      input,
		"table":      table,
		"tr":         tableRow,
		"th":         tableCell,
		"td":         tableCell,
		"hr":         thematicBreak,
		"br":         lineBreak,
	}

	for level := 1; level <= 6; level++ {
		rules["h"+strconv.Itoa(level)] = heading(level)
	}
	for _, tag := range droppedTags {
		rules[tag] = drop
	}
	for _, tag := range blockUnwrapTags {
		rules[tag] = unwrapBlock
	}
	for _, tag := range inlineUnwrapTags {
		rules[tag] = unwrap
	}

	return rules
}

func drop(*Context, *hast.Node) Result {
	return Result{Action: Drop}
}

func unwrap(*Context, *hast.Node) Result {
	return Result{Action: Unwrap}
}

func unwrapBlock(*Context, *hast.Node) Result {
	return Result{Action: Unwrap, Block: true}
}

func descend(kind mdast.NodeKind) Rule {
	return func(*Context, *hast.Node) Result {
		return Result{Action: Descend, Node: mdast.NewNode(kind)}
	}
}

func heading(level int) Rule {
	return func(*Context, *hast.Node) Result {
		return Result{Action: Descend, Node: mdast.NewHeading(level)}
	}
}

func inlineCode(_ *Context, el *hast.Node) Result {
	value := strings.ReplaceAll(hast.TextContent(el), "\n", " ")
	return Result{Action: Leaf, Node: mdast.NewCodeSpan(value)}
}

func anchor(_ *Context, el *hast.Node) Result {
	href, ok := el.Attr("href")
	if !ok {
		return Result{Action: Unwrap}
	}
	return Result{Action: Descend, Node: mdast.NewLink(href, el.AttrOr("title", ""))}
}

func image(_ *Context, el *hast.Node) Result {
	src, ok := el.Attr("src")
	if !ok {
		return Result{Action: Drop}
	}
	return Result{Action: Leaf, Node: mdast.NewImage(src, el.AttrOr("title", ""), el.AttrOr("alt", ""))}
}

// media renders <video> and <audio> as a link to the source, showing the
// video poster when present.
func media(_ *Context, el *hast.Node) Result {
	src := mediaSource(el)
	if src == "" {
		return Result{Action: Drop}
	}

	link := mdast.NewLink(src, el.AttrOr("title", ""))
	if poster, ok := el.Attr("poster"); ok && el.IsElement("video") && poster != "" {
		mdast.AppendChild(link, mdast.NewImage(poster, "", ""))
	} else {
		mdast.AppendChild(link, mdast.NewText(src))
	}
	return Result{Action: Leaf, Node: link}
}

func mediaSource(el *hast.Node) string {
	if src := el.AttrOr("src", ""); src != "" {
		return src
	}
	for _, child := range el.Children {
		if child.IsElement("source") {
			if src := child.AttrOr("src", ""); src != "" {
				return src
			}
		}
	}
	return ""
}

func preformatted(ctx *Context, el *hast.Node) Result {
	value := strings.TrimSuffix(hast.TextContent(el), "\n")
	if ctx.Inline() {
		return Result{Action: Leaf, Node: mdast.NewCodeSpan(strings.ReplaceAll(value, "\n", " "))}
	}

	lang := codeLanguage(el)
	if lang == "" && ctx.Options.DetectLanguage {
		lang = langdetect.Detect(value)
	}
	return Result{Action: Leaf, Node: mdast.NewCodeBlock(lang, value)}
}

// codeLanguage returns the language-X class of the first <code> child,
// falling back to the <pre> itself.
func codeLanguage(pre *hast.Node) string {
	if code := pre.FirstElementChild("code"); code != nil {
		if lang := languageClass(code); lang != "" {
			return lang
		}
	}
	return languageClass(pre)
}

func languageClass(el *hast.Node) string {
	const prefix = "language-"
	for _, class := range el.Classes() {
		if lang, ok := strings.CutPrefix(class, prefix); ok && lang != "" {
			return lang
		}
	}
	return ""
}

func list(_ *Context, el *hast.Node) Result {
	if !el.IsElement("ol") {
		return Result{Action: Descend, Node: mdast.NewList(false, 1)}
	}
	return Result{Action: Descend, Node: mdast.NewList(true, intAttr(el, "start", 1, 0))}
}

func listItem(*Context, *hast.Node) Result {
	return Result{Action: Descend, Node: mdast.NewListItem()}
}

// input marks the enclosing list item as a task when a checkbox is its first
// content. Every other input is dropped.
func input(ctx *Context, el *hast.Node) Result {
	if !strings.EqualFold(el.AttrOr("type", ""), "checkbox") {
		return Result{Action: Drop}
	}

	item := ctx.Parent
	for item != nil && item.Kind == mdast.NodeParagraph {
		item = item.Parent
	}
	if item == nil || item.Kind != mdast.NodeListItem || item.Block.ListItem.Checked != nil {
		return Result{Action: Drop}
	}
	if strings.TrimSpace(mdast.TextContent(item)) != "" {
		return Result{Action: Drop}
	}

	_, checked := el.Attr("checked")
	item.Block.ListItem.Checked = &checked
	return Result{Action: Drop}
}

func table(*Context, *hast.Node) Result {
	return Result{Action: Descend, Node: mdast.NewTable(nil)}
}

func tableRow(ctx *Context, el *hast.Node) Result {
	if ctx.Parent.Kind != mdast.NodeTable && !ctx.Inline() {
		return Result{Action: Unwrap, Block: true}
	}
	row := mdast.NewNode(mdast.NodeTableRow)
	if el.Parent != nil && el.Parent.IsElement("thead") {
		ctx.run.headRows[row] = true
	}
	return Result{Action: Descend, Node: row}
}

// Limits on spans, matching what browsers accept.
const (
	maxColspan = 1000
	maxRowspan = 65534
)

func tableCell(ctx *Context, el *hast.Node) Result {
	switch ctx.Parent.Kind {
	case mdast.NodeTable, mdast.NodeTableRow:
	default:
		if !ctx.Inline() {
			return Result{Action: Unwrap, Block: true}
		}
	}

	cell := mdast.NewNode(mdast.NodeTableCell)
	ctx.run.cells[cell] = cellMeta{
		colspan: intAttr(el, "colspan", 1, 1),
		rowspan: intAttr(el, "rowspan", 1, 1),
		align:   cellAlign(el),
	}
	return Result{Action: Descend, Node: cell}
}

func cellAlign(el *hast.Node) mdast.Align {
	value := el.AttrOr("align", "")
	for _, decl := range strings.Split(el.AttrOr("style", ""), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), "text-align") {
			value = val
		}
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "start":
		return mdast.AlignLeft
	case "center":
		return mdast.AlignCenter
	case "right", "end":
		return mdast.AlignRight
	default:
		return mdast.AlignNone
	}
}

func thematicBreak(ctx *Context, _ *hast.Node) Result {
	return Result{Action: Leaf, Node: mdast.NewThematicBreak(ctx.Options.Rule)}
}

func lineBreak(*Context, *hast.Node) Result {
	return Result{Action: Leaf, Node: mdast.NewNode(mdast.NodeHardBreak)}
}

// intAttr parses an integer attribute, returning fallback when it is absent,
// malformed or below minimum.
func intAttr(el *hast.Node, name string, fallback, minimum int) int {
	raw, ok := el.Attr(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < minimum {
		return fallback
	}
	return n
}
