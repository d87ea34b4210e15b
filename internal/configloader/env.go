package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/htmlmd"
)

// envVarPrefix is the prefix for all htmlmd environment variables.
const envVarPrefix = "HTMLMD_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to option key mappings.
type envMapping struct {
	key         string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to option keys.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FRAGMENT": {
		key: htmlmd.KeyFragment, typ: envTypeBool,
		description: "Parse input as a fragment: true or false",
	},
	"AUTOLINK_HEADINGS": {
		key: htmlmd.KeyEnableAutolinkHeadings, typ: envTypeBool,
		description: "Link heading content to the heading slug: true or false",
	},
	"RULE": {
		key: htmlmd.KeyRule, typ: envTypeString,
		description: "Thematic break character: *, - or _",
	},
	"MAX_DEPTH": {
		key: htmlmd.KeyMaxDepth, typ: envTypeInt,
		description: "Maximum element nesting depth",
	},
	"DETECT_LANGUAGE": {
		key: htmlmd.KeyDetectLanguage, typ: envTypeBool,
		description: "Guess code block languages: true or false",
	},
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// LoadFromEnv reads HTMLMD_* overrides into values, recording each key's
// source in sources. A nil lookup reads the process environment.
func LoadFromEnv(values map[string]any, sources map[string]string, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	suffixes := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)

	for _, suffix := range suffixes {
		mapping := envMappings[suffix]
		envVar := envVarPrefix + suffix
		raw, ok := lookup(envVar)
		if !ok || raw == "" {
			continue
		}

		value, err := parseEnvValue(mapping, raw, envVar)
		if err != nil {
			return &ValidationError{Field: mapping.key, Value: raw, Message: err.Error(), Source: envVar}
		}
		values[mapping.key] = value
		sources[mapping.key] = envVar
	}

	return nil
}

// parseEnvValue converts a raw environment string to the option's type.
func parseEnvValue(mapping envMapping, value, envVar string) (any, error) {
	switch mapping.typ {
	case envTypeString:
		return value, nil
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return b, nil
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("unknown field type for %s", envVar)
	}
}

// GetEnvVarName returns the full environment variable name for an option key.
func GetEnvVarName(key string) string {
	for suffix, mapping := range envMappings {
		if mapping.key == key {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
