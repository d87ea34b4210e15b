// Package htmlmd converts HTML documents and fragments into GitHub Flavored
// Markdown.
//
// Conversion runs three stages: a forgiving HTML parser builds a hast tree,
// a tag-keyed dispatch table transforms it into a Markdown syntax tree, and a
// serializer renders the result. Each call is independent and safe to run
// concurrently with others.
//
//	md, err := htmlmd.Convert("<h1>Title</h1><p>Hello <b>world</b></p>", htmlmd.DefaultOptions())
//	// md == "# Title\n\nHello **world**"
package htmlmd
