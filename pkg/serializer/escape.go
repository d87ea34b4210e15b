package serializer

import "strings"

// escapeText backslash-escapes characters that would otherwise start
// Markdown syntax inside running text.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "\\*_`[]<~&") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '*', '_', '`', '[', ']':
			sb.WriteByte('\\')
		case '<':
			if i+1 < len(s) && startsTag(s[i+1]) {
				sb.WriteByte('\\')
			}
		case '~':
			if (i+1 < len(s) && s[i+1] == '~') || (i > 0 && s[i-1] == '~') {
				sb.WriteByte('\\')
			}
		case '&':
			if isReference(s[i+1:]) {
				sb.WriteByte('\\')
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// isReference reports whether s, the text after an '&', begins an entity or
// numeric character reference: "name;", "#123;" or "#x1F;".
func isReference(s string) bool {
	const maxRefLen = 32
	end := strings.IndexByte(s[:min(len(s), maxRefLen+1)], ';')
	if end <= 0 {
		return false
	}
	ref := s[:end]

	if ref[0] != '#' {
		return isAlpha(ref[0]) && strings.IndexFunc(ref, notAlnum) < 0
	}

	digits, isDigit := ref[1:], isDecimal
	if digits != "" && (digits[0] == 'x' || digits[0] == 'X') {
		digits, isDigit = digits[1:], isHex
	}
	const maxDigits = 7
	if digits == "" || len(digits) > maxDigits {
		return false
	}
	for i := range len(digits) {
		if !isDigit(digits[i]) {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool   { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDecimal(c byte) bool { return c >= '0' && c <= '9' }
func isHex(c byte) bool     { return isDecimal(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }

func notAlnum(r rune) bool {
	return r >= 0x80 || !(isAlpha(byte(r)) || isDecimal(byte(r)))
}

func startsTag(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '/' || c == '!' || c == '?'
}

// escapeLineStart escapes a leading character that would turn a paragraph
// line into a heading, blockquote, list item, rule or setext underline.
func escapeLineStart(line string) string {
	if line == "" {
		return line
	}

	switch c := line[0]; c {
	case '>', '=':
		return `\` + line
	case '#', '+', '-':
		if len(line) == 1 || line[1] == ' ' || line[1] == c {
			return `\` + line
		}
		return line
	default:
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	const maxListDigits = 9
	if digits == 0 || digits > maxListDigits || digits == len(line) {
		return line
	}
	if d := line[digits]; d != '.' && d != ')' {
		return line
	}
	if digits+1 < len(line) && line[digits+1] != ' ' {
		return line
	}
	return line[:digits] + `\` + line[digits:]
}

// escapePipes escapes every '|' not already escaped, so cell content cannot
// split a table row.
func escapePipes(s string) string {
	if !strings.Contains(s, "|") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 4)
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '|' && backslashes%2 == 0 {
			sb.WriteByte('\\')
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
