package pretty

import (
	"strings"

	"github.com/yaklabco/htmlmd/pkg/runner"
)

// FormatFailure formats one failed file: the path on its own line and the
// error indented below it.
func (s *Styles) FormatFailure(outcome runner.FileOutcome) string {
	if outcome.Error == nil {
		return ""
	}

	label := s.Error.Render("error")
	if outcome.Status == runner.StatusTimedOut {
		label = s.Error.Render("timeout")
	}

	message := strings.TrimPrefix(outcome.Error.Error(), outcome.Path+": ")
	return s.FilePath.Render(outcome.Path) + "\n  " + label + " " + s.Message.Render(message) + "\n"
}

// FormatFailures formats every failed file of a run, in path order.
func (s *Styles) FormatFailures(result *runner.Result) string {
	if result == nil {
		return ""
	}

	var builder strings.Builder
	for _, outcome := range result.Files {
		builder.WriteString(s.FormatFailure(outcome))
	}
	return builder.String()
}
