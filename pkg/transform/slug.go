package transform

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultSlug replaces a heading slug that would otherwise be empty.
const defaultSlug = "heading"

// Slug derives an anchor identifier from heading text: lower-cased, with
// every run of characters other than letters and digits replaced by a single
// hyphen and no leading or trailing hyphen.
func Slug(text string) string {
	lower := cases.Lower(language.Und).String(text)

	var sb strings.Builder
	sb.Grow(len(lower))
	pendingDash := false
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	if sb.Len() == 0 {
		return defaultSlug
	}
	return sb.String()
}

// Slugger hands out unique slugs within one document.
type Slugger struct {
	seen map[string]int
}

// NewSlugger creates an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Unique returns base, or base-2, base-3, ... when base is taken.
func (s *Slugger) Unique(base string) string {
	if s.seen[base] == 0 {
		s.seen[base] = 1
		return base
	}
	for {
		s.seen[base]++
		candidate := base + "-" + strconv.Itoa(s.seen[base])
		if s.seen[candidate] == 0 {
			s.seen[candidate] = 1
			return candidate
		}
	}
}

// Reserve records an explicit identifier and returns it unchanged, so later
// generated slugs avoid it.
func (s *Slugger) Reserve(id string) string {
	if s.seen[id] == 0 {
		s.seen[id] = 1
	}
	return id
}
