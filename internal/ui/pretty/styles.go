// Package pretty renders lipgloss-styled batch conversion output.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// defaultTermWidth is used when the writer is not a terminal.
const defaultTermWidth = 100

// ANSI 256 palette indices.
const (
	colorRed    = lipgloss.Color("9")
	colorGreen  = lipgloss.Color("10")
	colorYellow = lipgloss.Color("11")
	colorSilver = lipgloss.Color("7")
	colorGray   = lipgloss.Color("8")
)

// Styles holds the renderers used for batch output. A zero-colour Styles
// renders every string unchanged.
type Styles struct {
	// Outcome of a single file.
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style

	// Failure list entries.
	FilePath lipgloss.Style
	Message  lipgloss.Style

	// Summary block.
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Failure      lipgloss.Style

	// Table chrome.
	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles returns coloured styles, or plain ones when colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	plain := lipgloss.NewStyle()
	if !colorEnabled {
		return &Styles{
			Error: plain, Warning: plain, Success: plain,
			FilePath: plain, Message: plain,
			SummaryTitle: plain, SummaryValue: plain, Failure: plain,
			TableHeader: plain, TableSeparator: plain,
			Dim: plain, Bold: plain,
		}
	}

	bold := plain.Bold(true)
	return &Styles{
		Error:          bold.Foreground(colorRed),
		Warning:        bold.Foreground(colorYellow),
		Success:        bold.Foreground(colorGreen),
		FilePath:       bold,
		Message:        plain,
		SummaryTitle:   bold,
		SummaryValue:   plain,
		Failure:        bold.Foreground(colorRed),
		TableHeader:    bold.Foreground(colorSilver),
		TableSeparator: plain.Foreground(colorGray),
		Dim:            plain.Foreground(colorGray),
		Bold:           bold,
	}
}

// IsColorEnabled resolves a --color mode against writer. "always" and
// "never" are absolute; anything else means auto, which colours only a
// terminal and honours NO_COLOR (https://no-color.org/).
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TerminalWidth returns the column count of the terminal behind writer, or a
// default for anything else.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
