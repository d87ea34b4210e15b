package htmlmd_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlmd"
	"github.com/yaklabco/htmlmd/internal/logging"
)

const webTool = `<h2>Web tool</h2><p>Hello World</p>` +
	`<pre><code class="language-css">body { color: 'red'; }</code></pre>`

func convert(t *testing.T, html string) string {
	t.Helper()
	out, err := htmlmd.Convert(html, htmlmd.DefaultOptions())
	require.NoError(t, err)
	return out
}

func TestConvert_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "heading paragraph and fenced code",
			html: webTool,
			want: "## Web tool\n\nHello World\n\n```css\nbody { color: 'red'; }\n```",
		},
		{
			name: "padded table",
			html: `<table><thead><tr><th>Name</th><th>Age</th><th>City</th></tr></thead>` +
				`<tbody><tr><td>John</td><td>25</td><td>New York</td></tr>` +
				`<tr><td>Jane</td><td>30</td><td>London</td></tr></tbody></table>`,
			want: "| Name | Age | City     |\n| ---- | --- | -------- |\n| John | 25  | New York |\n| Jane | 30  | London   |",
		},
		{
			name: "nested list",
			html: `<ul><li>Parent item 1<ul><li>Child item 1</li><li>Child item 2</li></ul></li><li>Parent item 2</li></ul>`,
			want: "* Parent item 1\n\n  * Child item 1\n  * Child item 2\n\n* Parent item 2",
		},
		{
			name: "nested list with source indentation",
			html: "<ul>\n  <li>Parent item 1\n    <ul>\n      <li>Child item 1</li>\n      <li>Child item 2</li>\n    </ul>\n  </li>\n  <li>Parent item 2</li>\n</ul>",
			want: "* Parent item 1\n\n  * Child item 1\n  * Child item 2\n\n* Parent item 2",
		},
		{
			name: "bold and italic",
			html: `<p>This is <strong>bold text</strong> and <em>italic text</em>.</p>`,
			want: "This is **bold text** and *italic text*.",
		},
		{
			name: "inline code",
			html: `<p>Use <code>inline code</code> here</p>`,
			want: "Use `inline code` here",
		},
		{
			name: "link",
			html: `<p>Visit <a href="https://example.com">Example</a></p>`,
			want: "Visit [Example](https://example.com)",
		},
		{
			name: "link with title",
			html: `<a href="https://example.com" title="Home">Example</a>`,
			want: `[Example](https://example.com "Home")`,
		},
		{
			name: "image with title",
			html: `<img src="https://example.com/image.jpg" alt="Example Image" title="This is an example">`,
			want: `![Example Image](https://example.com/image.jpg "This is an example")`,
		},
		{
			name: "blockquote",
			html: `<blockquote><p>This is a quote</p></blockquote>`,
			want: "> This is a quote",
		},
		{
			name: "ordered list",
			html: `<ol><li>First step</li><li>Second step</li><li>Third step</li></ol>`,
			want: "1. First step\n2. Second step\n3. Third step",
		},
		{
			name: "ordered list with start",
			html: `<ol start="4"><li>four</li><li>five</li></ol>`,
			want: "4. four\n5. five",
		},
		{
			name: "non-numeric start falls back to one",
			html: `<ol start="x"><li>one</li></ol>`,
			want: "1. one",
		},
		{
			name: "strikethrough",
			html: `<p><del>old</del> new</p>`,
			want: "~~old~~ new",
		},
		{
			name: "task list",
			html: `<ul><li><input type="checkbox" checked> Done</li><li><input type="checkbox"> Todo</li></ul>`,
			want: "* [x] Done\n* [ ] Todo",
		},
		{
			name: "aligned table",
			html: `<table><tr><th style="text-align:right">Price</th><th style="text-align:center">Item</th></tr>` +
				`<tr><td>1</td><td>Apple</td></tr></table>`,
			want: "| Price | Item  |\n| ----: | :---: |\n| 1     | Apple |",
		},
		{
			name: "code block without language",
			html: "<pre>line1\n  line2</pre>",
			want: "```\nline1\n  line2\n```",
		},
		{
			name: "entities decoded and re-escaped",
			html: `<p>a &amp; b &lt;tag&gt;</p>`,
			want: `a & b \<tag>`,
		},
		{
			name: "entities decoded inside pre",
			html: `<pre>a &lt; b &amp;&amp; c</pre>`,
			want: "```\na < b && c\n```",
		},
		{
			name: "unterminated tag runs to end",
			html: `<p>unclosed <b>bold`,
			want: "unclosed **bold**",
		},
		{
			name: "stray end tag ignored",
			html: `text</div> more`,
			want: "text more",
		},
		{
			name: "literal less-than",
			html: `<p>1 < 2</p>`,
			want: "1 < 2",
		},
		{
			name: "script and style dropped",
			html: `<style>p{}</style><p>kept</p><script>var x = "<p>";</script>`,
			want: "kept",
		},
		{
			name: "adjacent lists stay separate",
			html: `<ul><li>a</li></ul><ul><li>b</li></ul>`,
			want: "* a\n\n- b",
		},
		{
			name: "divs separate blocks",
			html: `<div>one</div><div>two</div>`,
			want: "one\n\ntwo",
		},
		{
			name: "line break",
			html: `<p>line1<br>line2</p>`,
			want: "line1\\\nline2",
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, convert(t, tt.html))
		})
	}
}

func TestConvert_Rule(t *testing.T) {
	t.Parallel()

	out := convert(t, "<hr>")
	assert.Equal(t, "***", out)

	for _, rule := range []byte{'*', '-', '_'} {
		opts := htmlmd.DefaultOptions()
		opts.Rule = rule
		out, err := htmlmd.Convert("<p>a</p><hr><p>b</p>", opts)
		require.NoError(t, err)
		assert.Equal(t, "a\n\n"+strings.Repeat(string(rule), 3)+"\n\nb", out)
	}
}

func TestConvert_AutolinkHeadings(t *testing.T) {
	t.Parallel()

	opts := htmlmd.DefaultOptions()
	opts.EnableAutolinkHeadings = true

	out, err := htmlmd.Convert(`<h2>Web tool</h2><h2>Web tool</h2>`, opts)
	require.NoError(t, err)
	assert.Equal(t, "## [Web tool](#web-tool)\n\n## [Web tool](#web-tool-2)", out)
}

func TestConvert_Document(t *testing.T) {
	t.Parallel()

	src := `<!DOCTYPE html><html><head><title>Page</title></head><body><h1>Hi</h1><p>Body</p></body></html>`

	opts := htmlmd.DefaultOptions()
	opts.Fragment = false
	out, err := htmlmd.Convert(src, opts)
	require.NoError(t, err)
	assert.Equal(t, "# Hi\n\nBody", out)

	// A fragment parse drops <head> through the transformer instead.
	assert.Equal(t, "# Hi\n\nBody", convert(t, src))
}

func TestConvert_DetectLanguage(t *testing.T) {
	t.Parallel()

	opts := htmlmd.DefaultOptions()
	opts.DetectLanguage = true

	out, err := htmlmd.Convert("<pre>package main\n\nfunc main() {}\n</pre>", opts)
	require.NoError(t, err)
	assert.Equal(t, "```go\npackage main\n\nfunc main() {}\n```", out)
}

func TestConvert_HeadingLevels(t *testing.T) {
	t.Parallel()

	for level := 1; level <= 6; level++ {
		out := convert(t, fmt.Sprintf("<h%d>Title</h%d>", level, level))
		assert.Equal(t, strings.Repeat("#", level)+" Title", out)
	}

	// h7 is not a heading element, so its content stays a plain paragraph.
	assert.Equal(t, "Title", convert(t, "<h7>Title</h7>"))
}

func TestConvert_OrderedMarkers(t *testing.T) {
	t.Parallel()

	const items = 12
	var sb strings.Builder
	sb.WriteString("<ol>")
	for i := range items {
		fmt.Fprintf(&sb, "<li>item %d</li>", i)
	}
	sb.WriteString("</ol>")

	lines := strings.Split(convert(t, sb.String()), "\n")
	require.Len(t, lines, items)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, fmt.Sprintf("%d. ", i+1)), "line %q", line)
	}
}

func TestConvert_TableRowsAreSquare(t *testing.T) {
	t.Parallel()

	src := `<table><tr><th>a</th><th>b</th><th>c</th></tr>` +
		`<tr><td>1</td></tr>` +
		`<tr><td colspan="2">wide</td><td>x</td><td>extra</td></tr>` +
		`<tr><td>long cell text</td><td></td><td>z</td></tr></table>`

	lines := strings.Split(convert(t, src), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.Equal(t, 4, strings.Count(line, "|"), "line %q", line)
		assert.Equal(t, len(lines[0]), len(line), "line %q", line)
	}
}

func TestConvert_Deterministic(t *testing.T) {
	t.Parallel()

	first := convert(t, webTool)
	for range 5 {
		assert.Equal(t, first, convert(t, webTool))
	}
}

func TestConvert_Concurrent(t *testing.T) {
	t.Parallel()

	want := convert(t, webTool)

	const workers = 32
	results := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Go(func() {
			results[i], errs[i] = htmlmd.Convert(webTool, htmlmd.DefaultOptions())
		})
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestConvert_DepthExceeded(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("<div>", 2000) + "deep" + strings.Repeat("</div>", 2000)

	out, err := htmlmd.Convert(src, htmlmd.DefaultOptions())
	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, htmlmd.ErrDepthExceeded)

	var depthErr *htmlmd.DepthExceededError
	require.ErrorAs(t, err, &depthErr)
	assert.Equal(t, 1000, depthErr.Limit)

	opts := htmlmd.DefaultOptions()
	opts.MaxDepth = 5000
	out, err = htmlmd.Convert(src, opts)
	require.NoError(t, err)
	assert.Equal(t, "deep", out)
}

func TestConvert_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*htmlmd.Options)
		key    string
	}{
		{"bad rule", func(o *htmlmd.Options) { o.Rule = 'x' }, htmlmd.KeyRule},
		{"zero rule", func(o *htmlmd.Options) { o.Rule = 0 }, htmlmd.KeyRule},
		{"zero depth", func(o *htmlmd.Options) { o.MaxDepth = 0 }, htmlmd.KeyMaxDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := htmlmd.DefaultOptions()
			tt.mutate(&opts)

			out, err := htmlmd.Convert("<p>x</p>", opts)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.ErrorIs(t, err, htmlmd.ErrUnsupportedOption)

			var optErr *htmlmd.UnsupportedOptionError
			require.ErrorAs(t, err, &optErr)
			assert.Equal(t, tt.key, optErr.Name)
		})
	}
}

func TestConvertContext_Logs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&buf, "debug"))

	_, err := htmlmd.ConvertContext(ctx, "<p>hello</p>", htmlmd.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "converted html")
	assert.Contains(t, buf.String(), "output_bytes=5")
}
