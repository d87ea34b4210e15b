package reporter

import (
	"fmt"
	"slices"
	"strings"
)

// Format selects how a batch result is written.
type Format string

// Report formats. Text is the default.
const (
	FormatText    Format = "text"
	FormatTable   Format = "table"
	FormatSummary Format = "summary"
	FormatJSON    Format = "json"
)

//nolint:gochecknoglobals // Read-only list of accepted formats.
var formats = []Format{FormatText, FormatTable, FormatSummary, FormatJSON}

// ParseFormat maps a --format value to a Format. An empty value means text.
func ParseFormat(value string) (Format, error) {
	if value == "" {
		return FormatText, nil
	}
	if f := Format(value); slices.Contains(formats, f) {
		return f, nil
	}

	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", value, strings.Join(names, ", "))
}

func (f Format) String() string {
	return string(f)
}
