// Package configloader resolves conversion options from config files,
// environment variables and command-line flags.
package configloader

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/htmlmd"
)

// ErrInvalidConfigFile is returned for a config file that is not a YAML
// mapping of option keys.
var ErrInvalidConfigFile = errors.New("invalid config file")

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv LookupFunc

	// Flags holds option values from CLI flags, keyed like the config file.
	// These take highest precedence.
	Flags map[string]any
}

// LoadResult contains the resolved options and metadata.
type LoadResult struct {
	// Options is the validated conversion options.
	Options htmlmd.Options

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Sources maps each option key that was set to where it was set.
	Sources map[string]string
}

// Load resolves the final options by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.Flags)
//  2. Environment variables (HTMLMD_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.htmlmd.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/htmlmd/config.yaml)
//  6. System config (/etc/htmlmd/config.yaml)
//  7. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths, Sources: make(map[string]string)}
	values := make(map[string]any)
	origins := make(map[string]origin)

	files := []struct {
		path string
		skip bool
		what string
	}{
		{paths.System, opts.IgnoreSystemConfig, "system"},
		{paths.User, opts.IgnoreUserConfig, "user"},
		{paths.Project, opts.IgnoreProjectConfig, "project"},
		{paths.Explicit, false, "explicit"},
	}
	for _, file := range files {
		if file.skip || file.path == "" {
			continue
		}
		fileValues, lines, err := loadConfigFile(file.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", file.what, err)
		}
		for key, value := range fileValues {
			values[key] = value
			origins[key] = origin{source: file.path, line: lines[key]}
		}
		result.LoadedFrom = append(result.LoadedFrom, file.path)
	}

	if !opts.IgnoreEnv {
		envSources := make(map[string]string)
		if err := LoadFromEnv(values, envSources, opts.LookupEnv); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		for key, envVar := range envSources {
			origins[key] = origin{source: envVar}
		}
	}

	maps.Copy(values, opts.Flags)
	for key := range opts.Flags {
		origins[key] = origin{source: SourceFlag}
	}

	options, err := Validate(values, origins)
	if err != nil {
		return nil, err
	}

	for key, where := range origins {
		result.Sources[key] = where.source
	}
	result.Options = options
	return result, nil
}

// loadConfigFile reads a YAML mapping of option keys. It returns the decoded
// values and the line each key appears on.
func loadConfigFile(path string) (map[string]any, map[string]int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse YAML: %w", err)
	}

	values := make(map[string]any)
	lines := make(map[string]int)
	if len(doc.Content) == 0 {
		return values, lines, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("%w: %s:%d: expected a mapping of options", ErrInvalidConfigFile, path, root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]

		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("%w: %s:%d: %s: %w", ErrInvalidConfigFile, path, valueNode.Line, keyNode.Value, err)
		}
		values[keyNode.Value] = value
		lines[keyNode.Value] = keyNode.Line
	}

	return values, lines, nil
}
