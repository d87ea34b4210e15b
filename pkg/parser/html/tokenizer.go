package html

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// TokenKind classifies a token produced by the tokenizer.
type TokenKind uint8

// Token kinds.
const (
	TokText TokenKind = iota
	TokStartTag
	TokEndTag
	TokComment
)

// Token is a single lexical unit of HTML input.
type Token struct {
	Kind TokenKind

	// Data is the lower-case tag name for tags, or the decoded content for
	// text and comments.
	Data string

	// Attrs holds decoded attribute values for start tags. The first
	// occurrence of a duplicated attribute wins.
	Attrs map[string]string

	// SelfClosing is true for start tags written as <tag/>.
	SelfClosing bool
}

// state is a tokenizer state.
type state uint8

const (
	stateData state = iota
	stateTagOpen
	stateTagName
	stateAttribute
	stateAttributeValue
	stateEndTag
	stateComment
	stateRawText
)

// rawTextTags hold content that is never parsed as markup.
//
//nolint:gochecknoglobals // Read-only lookup table.
var rawTextTags = map[string]bool{
	"script":    true,
	"style":     true,
	"textarea":  true,
	"title":     true,
	"xmp":       true,
	"noembed":   true,
	"noframes":  true,
	"plaintext": true,
}

// rcdataTags are raw text tags whose content still has entities decoded.
//
//nolint:gochecknoglobals // Read-only lookup table.
var rcdataTags = map[string]bool{
	"textarea": true,
	"title":    true,
}

// tokenizer is a single-pass state machine over HTML source.
type tokenizer struct {
	src    string
	pos    int
	state  state
	tokens []Token

	text strings.Builder

	// Pending tag while in TagName, Attribute or AttributeValue.
	tag      Token
	attrName string

	// Comment kind: bogus comments (<!DOCTYPE>, <?xml?>) end at '>'.
	bogus bool

	// Tag whose end tag terminates RawText.
	rawTag string
}

// Tokenize splits HTML source into tokens. It never fails: malformed input
// degrades to text.
func Tokenize(src string) []Token {
	const initialCapacityDivisor = 8
	tok := &tokenizer{
		src:    src,
		tokens: make([]Token, 0, len(src)/initialCapacityDivisor+1),
	}
	tok.run()
	return tok.tokens
}

func (t *tokenizer) run() {
	for t.pos < len(t.src) {
		switch t.state {
		case stateData:
			t.data()
		case stateTagOpen:
			t.tagOpen()
		case stateTagName:
			t.tagName()
		case stateAttribute:
			t.attribute()
		case stateAttributeValue:
			t.attributeValue()
		case stateEndTag:
			t.endTag()
		case stateComment:
			t.comment()
		case stateRawText:
			t.rawText()
		}
	}
	t.finish()
}

// data consumes text up to the next '<'.
func (t *tokenizer) data() {
	idx := strings.IndexByte(t.src[t.pos:], '<')
	if idx < 0 {
		t.text.WriteString(t.src[t.pos:])
		t.pos = len(t.src)
		return
	}
	t.text.WriteString(t.src[t.pos : t.pos+idx])
	t.pos += idx + 1
	t.state = stateTagOpen
}

// tagOpen decides what follows a '<'. Anything that cannot start a tag or
// comment is literal text.
func (t *tokenizer) tagOpen() {
	c := t.src[t.pos]
	switch {
	case isASCIILetter(c):
		t.flushText()
		t.tag = Token{Kind: TokStartTag}
		t.state = stateTagName
	case c == '/':
		if t.pos+1 < len(t.src) && isASCIILetter(t.src[t.pos+1]) {
			t.flushText()
			t.pos++
			t.tag = Token{Kind: TokEndTag}
			t.state = stateEndTag
			return
		}
		if t.pos+1 < len(t.src) && t.src[t.pos+1] == '>' {
			// "</>" is dropped entirely.
			t.pos += 2
			t.state = stateData
			return
		}
		t.text.WriteByte('<')
		t.state = stateData
	case c == '!':
		t.flushText()
		if strings.HasPrefix(t.src[t.pos:], "!--") {
			t.pos += 3
			t.bogus = false
		} else {
			t.pos++
			t.bogus = true
		}
		t.state = stateComment
	case c == '?':
		t.flushText()
		t.bogus = true
		t.state = stateComment
	default:
		t.text.WriteByte('<')
		t.state = stateData
	}
}

func (t *tokenizer) tagName() {
	start := t.pos
	for t.pos < len(t.src) && !isTagNameEnd(t.src[t.pos]) {
		t.pos++
	}
	t.tag.Data = strings.ToLower(t.src[start:t.pos])
	t.state = stateAttribute
}

// attribute consumes whitespace, attribute names and the tag terminator.
func (t *tokenizer) attribute() {
	t.skipSpace()
	if t.pos >= len(t.src) {
		return
	}

	switch c := t.src[t.pos]; {
	case c == '>':
		t.pos++
		t.emitTag()
		return
	case c == '/':
		t.pos++
		if t.pos < len(t.src) && t.src[t.pos] == '>' {
			t.pos++
			t.tag.SelfClosing = true
			t.emitTag()
		}
		return
	}

	start := t.pos
	for t.pos < len(t.src) && !isAttrNameEnd(t.src[t.pos]) {
		t.pos++
	}
	if t.pos == start {
		// A stray '=' or quote: skip it.
		t.pos++
		return
	}
	name := strings.ToLower(t.src[start:t.pos])

	t.skipSpace()
	if t.pos < len(t.src) && t.src[t.pos] == '=' {
		t.pos++
		t.attrName = name
		t.state = stateAttributeValue
		return
	}
	t.setAttr(name, "")
}

func (t *tokenizer) attributeValue() {
	t.skipSpace()
	if t.pos >= len(t.src) {
		return
	}

	var raw string
	switch q := t.src[t.pos]; q {
	case '"', '\'':
		t.pos++
		end := strings.IndexByte(t.src[t.pos:], q)
		if end < 0 {
			raw = t.src[t.pos:]
			t.pos = len(t.src)
		} else {
			raw = t.src[t.pos : t.pos+end]
			t.pos += end + 1
		}
	default:
		start := t.pos
		for t.pos < len(t.src) && !isSpace(t.src[t.pos]) && t.src[t.pos] != '>' {
			t.pos++
		}
		raw = t.src[start:t.pos]
	}

	t.setAttr(t.attrName, xhtml.UnescapeString(raw))
	t.attrName = ""
	t.state = stateAttribute
}

// endTag consumes "</name ...>". Anything between the name and '>' is ignored.
func (t *tokenizer) endTag() {
	start := t.pos
	for t.pos < len(t.src) && !isTagNameEnd(t.src[t.pos]) {
		t.pos++
	}
	t.tag.Data = strings.ToLower(t.src[start:t.pos])

	end := strings.IndexByte(t.src[t.pos:], '>')
	if end < 0 {
		t.pos = len(t.src)
	} else {
		t.pos += end + 1
	}
	t.tokens = append(t.tokens, t.tag)
	t.tag = Token{}
	t.state = stateData
}

func (t *tokenizer) comment() {
	terminator := "-->"
	if t.bogus {
		terminator = ">"
	}

	end := strings.Index(t.src[t.pos:], terminator)
	var value string
	if end < 0 {
		value = t.src[t.pos:]
		t.pos = len(t.src)
	} else {
		value = t.src[t.pos : t.pos+end]
		t.pos += end + len(terminator)
	}

	if !t.bogus {
		t.tokens = append(t.tokens, Token{Kind: TokComment, Data: value})
	}
	t.state = stateData
}

// rawText consumes content verbatim up to the matching end tag.
func (t *tokenizer) rawText() {
	end := t.findRawEnd()
	content := t.src[t.pos:end]
	if rcdataTags[t.rawTag] {
		content = xhtml.UnescapeString(content)
	}
	if content != "" {
		t.tokens = append(t.tokens, Token{Kind: TokText, Data: content})
	}
	t.pos = end
	t.rawTag = ""
	t.state = stateData
}

// findRawEnd returns the offset of "</rawTag" (case-insensitive) followed by
// a tag-name terminator, or len(src).
func (t *tokenizer) findRawEnd() int {
	if t.rawTag == "plaintext" {
		return len(t.src)
	}
	needle := "</" + t.rawTag
	lower := strings.ToLower(t.src[t.pos:])
	offset := 0
	for {
		idx := strings.Index(lower[offset:], needle)
		if idx < 0 {
			return len(t.src)
		}
		after := offset + idx + len(needle)
		if after >= len(lower) || isTagNameEnd(lower[after]) {
			return t.pos + offset + idx
		}
		offset = after
	}
}

func (t *tokenizer) emitTag() {
	t.tokens = append(t.tokens, t.tag)
	t.state = stateData
	if rawTextTags[t.tag.Data] && !t.tag.SelfClosing {
		t.rawTag = t.tag.Data
		t.state = stateRawText
	}
	t.tag = Token{}
}

// finish flushes state left open at end of input. An unterminated tag is
// still emitted with whatever was read.
func (t *tokenizer) finish() {
	switch t.state {
	case stateTagOpen:
		t.text.WriteByte('<')
	case stateTagName, stateAttribute, stateAttributeValue:
		if t.attrName != "" {
			t.setAttr(t.attrName, "")
		}
		t.tokens = append(t.tokens, t.tag)
	case stateEndTag:
		t.tokens = append(t.tokens, t.tag)
	case stateData, stateComment, stateRawText:
	}
	t.flushText()
}

func (t *tokenizer) flushText() {
	if t.text.Len() == 0 {
		return
	}
	t.tokens = append(t.tokens, Token{Kind: TokText, Data: xhtml.UnescapeString(t.text.String())})
	t.text.Reset()
}

func (t *tokenizer) setAttr(name, value string) {
	if t.tag.Attrs == nil {
		t.tag.Attrs = make(map[string]string)
	}
	if _, exists := t.tag.Attrs[name]; !exists {
		t.tag.Attrs[name] = value
	}
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.src) && isSpace(t.src[t.pos]) {
		t.pos++
	}
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isTagNameEnd(c byte) bool {
	return isSpace(c) || c == '/' || c == '>'
}

func isAttrNameEnd(c byte) bool {
	return isSpace(c) || c == '/' || c == '>' || c == '='
}
