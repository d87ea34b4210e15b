// Package charset decodes HTML input of any common encoding to UTF-8.
//
// The encoding is taken from, in order: an explicit label, a byte order
// mark, a <meta> declaration in the first 1024 bytes, UTF-8 validity, and
// finally statistical detection.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUnknownCharset is returned for a label no decoder is registered for.
var ErrUnknownCharset = errors.New("unknown charset")

// Names reported for input that needs no decoding or falls through every
// detector.
const (
	UTF8     = "utf-8"
	fallback = "windows-1252"
)

// Result is decoded input.
type Result struct {
	// Text is the UTF-8 content with any byte order mark removed.
	Text string

	// Charset is the canonical name of the source encoding.
	Charset string
}

// Decode converts data to UTF-8. A non-empty label forces that encoding.
func Decode(data []byte, label string) (Result, error) {
	if label = strings.TrimSpace(label); label != "" {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownCharset, label)
		}
		return decode(data, enc, canonicalName(enc, label))
	}

	enc, name, certain := htmlcharset.DetermineEncoding(data, "")
	if certain {
		return decode(data, enc, name)
	}

	// DetermineEncoding reports utf-8 for valid UTF-8 and windows-1252 when
	// it finds nothing, so any other name came from a <meta> declaration.
	if name != UTF8 && name != fallback {
		return decode(data, enc, name)
	}

	if utf8.Valid(data) {
		return Result{Text: strings.TrimPrefix(string(data), "\ufeff"), Charset: UTF8}, nil
	}

	if res, ok := detect(data); ok {
		return res, nil
	}
	return decode(data, charmap.Windows1252, fallback)
}

func decode(data []byte, enc encoding.Encoding, name string) (Result, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return Result{Text: strings.TrimPrefix(string(out), "\ufeff"), Charset: name}, nil
}

func canonicalName(enc encoding.Encoding, label string) string {
	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}
	return strings.ToLower(label)
}

// detect runs chardet and keeps the candidate whose decoding reads best.
func detect(data []byte) (Result, bool) {
	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil || len(results) == 0 {
		return Result{}, false
	}

	best, bestScore := Result{}, -1
	for _, r := range results {
		enc := lookup(r.Charset)
		if enc == nil {
			continue
		}
		res, err := decode(data, enc, canonicalName(enc, r.Charset))
		if err != nil {
			continue
		}
		if score := scoreDecoded(res.Text, r.Confidence); score > bestScore {
			best, bestScore = res, score
		}
	}
	return best, bestScore >= 0
}

// lookup resolves a chardet charset name, which sometimes carries hyphens
// the WHATWG index does not know, such as GB-18030.
func lookup(name string) encoding.Encoding {
	for _, candidate := range []string{name, strings.ReplaceAll(name, "-", "")} {
		if enc, err := htmlindex.Get(candidate); err == nil {
			return enc
		}
	}
	return nil
}

// scoreDecoded rates decoded text: replacement and control characters count
// against it, letters for it.
func scoreDecoded(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case r >= 0x3040 && r <= 0x30FF, r >= 0x4E00 && r <= 0x9FFF:
			score += 2
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= 0xC0 && r <= 0x24F):
			score++
		}
	}
	return max(score, 0)
}
