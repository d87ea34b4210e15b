package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/htmlmd/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command lipgloss.Style
	Heading lipgloss.Style
	Flag    lipgloss.Style
	Dim     lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{Command: plain, Heading: plain, Flag: plain, Dim: plain}
	}
	return &HelpStyles{
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Flag:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help for Cobra commands. The colour mode is
// read when help is rendered, after flags have been parsed.
type HelpFormatter struct {
	colorMode *string
}

// NewHelpFormatter creates a help formatter that follows *colorMode.
func NewHelpFormatter(colorMode *string) *HelpFormatter {
	return &HelpFormatter{colorMode: colorMode}
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if .IsAvailableCommand}}
  {{ command (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{ .CommandPath }} [command] --help" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate

// ApplyToCommand installs styled help and usage output on cmd. Subcommands
// inherit it.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return h.render(c.OutOrStderr(), usageTemplate, c)
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := h.render(c.OutOrStdout(), helpTemplate, c); err != nil {
			c.PrintErrln(err)
		}
	})
}

func (h *HelpFormatter) render(w io.Writer, text string, c *cobra.Command) error {
	mode := "auto"
	if h.colorMode != nil {
		mode = *h.colorMode
	}
	styles := NewHelpStyles(pretty.IsColorEnabled(mode, w))

	tmpl, err := template.New("help").Funcs(template.FuncMap{
		"heading": styles.Heading.Render,
		"command": styles.Command.Render,
		"flags":   func(flags *pflag.FlagSet) string { return formatFlags(styles, flags) },
		"rpad":    rpad,
		"trim":    strings.TrimSpace,
	}).Parse(text)
	if err != nil {
		return fmt.Errorf("parse help template: %w", err)
	}
	if err := tmpl.Execute(w, c); err != nil {
		return fmt.Errorf("render help: %w", err)
	}
	return nil
}

// formatFlags lays out one flag per line: names, value type, then usage and
// any non-zero default.
func formatFlags(styles *HelpStyles, flags *pflag.FlagSet) string {
	type line struct{ names, plainNames, usage string }

	var lines []line
	width := 0
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}

		valueName, usage := pflag.UnquoteUsage(flag)
		indent, names := "    ", "--"+flag.Name
		if flag.Shorthand != "" {
			indent, names = "", "-"+flag.Shorthand+", --"+flag.Name
		}
		plain := indent + names
		styled := indent + styles.Flag.Render(names)
		if valueName != "" {
			plain += " " + valueName
			styled += " " + styles.Dim.Render(valueName)
		}
		if flag.DefValue != "" && flag.DefValue != "false" && flag.DefValue != "0" &&
			flag.DefValue != "0s" && flag.DefValue != "[]" {
			usage += styles.Dim.Render(fmt.Sprintf(" (default %q)", flag.DefValue))
		}

		lines = append(lines, line{names: styled, plainNames: plain, usage: usage})
		width = max(width, len(plain))
	})

	var out strings.Builder
	for i, l := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString("  ")
		out.WriteString(l.names)
		out.WriteString(strings.Repeat(" ", width-len(l.plainNames)+3))
		out.WriteString(l.usage)
	}
	return out.String()
}

func rpad(s string, padding int) string {
	if len(s) >= padding {
		return s
	}
	return s + strings.Repeat(" ", padding-len(s))
}
