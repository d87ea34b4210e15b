package htmlmd

import (
	"fmt"
	"math"
	"sort"

	"github.com/yaklabco/htmlmd/pkg/hast"
)

// Option keys accepted by OptionsFromMap.
const (
	KeyFragment               = "fragment"
	KeyEnableAutolinkHeadings = "enableAutolinkHeadings"
	KeyRule                   = "rule"
	KeyMaxDepth               = "maxDepth"
	KeyDetectLanguage         = "detectLanguage"
)

// Options controls a conversion.
type Options struct {
	// Fragment parses the input as a fragment. When false the input is a
	// full document and only the <body> content is converted.
	Fragment bool

	// EnableAutolinkHeadings wraps heading content in a link to the
	// heading's slug.
	EnableAutolinkHeadings bool

	// Rule is the thematic break character: '*', '-' or '_'.
	Rule byte

	// MaxDepth bounds element nesting; deeper input fails with
	// *DepthExceededError.
	MaxDepth int

	// DetectLanguage guesses a fence language for code blocks without a
	// language-X class.
	DetectLanguage bool
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() Options {
	return Options{
		Fragment: true,
		Rule:     '*',
		MaxDepth: hast.DefaultMaxDepth,
	}
}

// Validate reports the first invalid field as *UnsupportedOptionError.
func (o Options) Validate() error {
	switch o.Rule {
	case '*', '-', '_':
	default:
		return &UnsupportedOptionError{Name: KeyRule, Value: string(o.Rule), Reason: "must be one of '*', '-', '_'"}
	}
	if o.MaxDepth <= 0 {
		return &UnsupportedOptionError{Name: KeyMaxDepth, Value: o.MaxDepth, Reason: "must be positive"}
	}
	return nil
}

// OptionsFromMap builds Options from a free-form key/value map, starting from
// DefaultOptions. Unknown keys and ill-typed or invalid values are rejected
// with *UnsupportedOptionError. Keys are checked in sorted order so the
// reported key is deterministic.
func OptionsFromMap(values map[string]any) (Options, error) {
	opts := DefaultOptions()

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := values[key]
		var err error
		switch key {
		case KeyFragment:
			opts.Fragment, err = boolValue(key, value)
		case KeyEnableAutolinkHeadings:
			opts.EnableAutolinkHeadings, err = boolValue(key, value)
		case KeyDetectLanguage:
			opts.DetectLanguage, err = boolValue(key, value)
		case KeyRule:
			opts.Rule, err = ruleValue(value)
		case KeyMaxDepth:
			opts.MaxDepth, err = intValue(key, value)
		default:
			err = &UnsupportedOptionError{Name: key, Value: value, Reason: "unknown option"}
		}
		if err != nil {
			return Options{}, err
		}
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func boolValue(key string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, &UnsupportedOptionError{Name: key, Value: value, Reason: "must be a boolean"}
	}
	return b, nil
}

func ruleValue(value any) (byte, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case rune:
		s = string(v)
	case byte:
		s = string(rune(v))
	default:
		return 0, &UnsupportedOptionError{Name: KeyRule, Value: value, Reason: "must be a string"}
	}
	if len(s) != 1 {
		return 0, &UnsupportedOptionError{Name: KeyRule, Value: value, Reason: "must be one of '*', '-', '_'"}
	}
	return s[0], nil
}

func intValue(key string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		if v >= math.MinInt && v <= math.MaxInt {
			return int(v), nil
		}
	case uint64:
		if v <= math.MaxInt {
			return int(v), nil
		}
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32 {
			return int(v), nil
		}
	}
	return 0, &UnsupportedOptionError{Name: key, Value: value, Reason: fmt.Sprintf("must be an integer, got %T", value)}
}
