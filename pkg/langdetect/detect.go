// Package langdetect guesses the language of a code block whose HTML source
// carried no language class. Interpreter lines and editor modelines win,
// then a table of strong textual signals, then go-enry's classifier for
// snippets long enough to judge. No answer is preferred to a wrong one.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// minClassifierLines is the shortest snippet handed to the classifier.
const minClassifierLines = 3

// classifierCandidates limits the classifier to languages commonly found in
// documentation.
//
//nolint:gochecknoglobals // Read-only lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// fenceNames maps go-enry names to the fence tag used in Markdown where the
// lower-cased name is not the usual one.
//
//nolint:gochecknoglobals // Read-only lookup table.
var fenceNames = map[string]string{
	"Shell":      "bash",
	"C++":        "cpp",
	"C#":         "csharp",
	"Emacs Lisp": "elisp",
}

// signal recognizes one language from text alone. Signals are tried in
// order, so more specific ones come first.
type signal struct {
	lang  string
	match func(code, trimmed string) bool
}

//nolint:gochecknoglobals // Read-only lookup table.
var signals = []signal{
	{"go", func(_, trimmed string) bool { return strings.HasPrefix(trimmed, "package ") }},
	{"python", looksLikePython},
	{"html", func(_, trimmed string) bool {
		return containsAny(strings.ToLower(trimmed), "<!doctype html", "<html", "<head>", "<body>")
	}},
	{"bash", func(_, trimmed string) bool { return strings.HasPrefix(trimmed, "$ ") }},
	{"json", func(_, trimmed string) bool {
		return (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && strings.Contains(trimmed, `"`)
	}},
	{"dockerfile", func(code, trimmed string) bool {
		return strings.HasPrefix(trimmed, "FROM ") ||
			(strings.Contains(code, "\nFROM ") && strings.Contains(code, "\nRUN ")) ||
			(strings.Contains(code, "WORKDIR ") && strings.Contains(code, "COPY "))
	}},
	{"sql", func(_, trimmed string) bool {
		upper := strings.ToUpper(trimmed)
		for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(upper, verb) {
				return true
			}
		}
		return false
	}},
	{"rust", func(code, _ string) bool { return containsAny(code, "fn main()", "println!", "let mut ") }},
	{"css", looksLikeCSS},
	{"javascript", func(code, _ string) bool { return containsAny(code, "=>", "const ", "let ", "console.log") }},
	{"yaml", looksLikeYAML},
}

// Detect returns a fence language for code, or "" when no guess is
// confident enough.
func Detect(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}

	content := []byte(code)
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return fenceName(lang)
	}
	if lang, safe := enry.GetLanguageByModeline(content); safe {
		return fenceName(lang)
	}

	for _, s := range signals {
		if s.match(code, trimmed) {
			return s.lang
		}
	}

	if strings.Count(trimmed, "\n")+1 < minClassifierLines {
		return ""
	}
	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return fenceName(lang)
	}
	return ""
}

func fenceName(lang string) string {
	if name, ok := fenceNames[lang]; ok {
		return name
	}
	return strings.ToLower(lang)
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// looksLikePython matches definitions, from-imports and the main guard.
// Go's parenthesized "import (" is excluded.
func looksLikePython(code, trimmed string) bool {
	if strings.Contains(code, "def ") && strings.Contains(code, "):") {
		return true
	}
	if strings.Contains(code, "import ") && !strings.Contains(code, "import (") &&
		(strings.Contains(code, "from ") || strings.HasPrefix(trimmed, "import ")) {
		return true
	}
	return containsAny(code, "__name__", "__main__")
}

// looksLikeCSS matches a selector followed by a block holding at least one
// "property: value;" declaration.
func looksLikeCSS(_, trimmed string) bool {
	selector, body, ok := strings.Cut(trimmed, "{")
	if !ok || strings.TrimSpace(selector) == "" || !strings.HasSuffix(body, "}") {
		return false
	}
	if strings.ContainsAny(selector, "()=;\"") {
		return false
	}
	_, declaration, ok := strings.Cut(body, ":")
	return ok && strings.Contains(declaration, ";")
}

// looksLikeYAML counts "key: value" lines and root list items.
func looksLikeYAML(code, _ string) bool {
	pairs := 0
	for line := range strings.SplitSeq(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ": ") && !strings.ContainsAny(line, "({") && !strings.HasPrefix(line, `"`) {
			pairs++
		}
		if strings.HasPrefix(line, "- ") {
			pairs++
		}
	}
	return pairs >= 2
}
