// Package runner converts batches of HTML files to Markdown.
package runner

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/htmlmd"
)

// Options controls a batch conversion.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths and
	// to mirror the input layout under OutDir.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered HTML. Defaults to DefaultExtensions().
	Extensions []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Timeout bounds each file's conversion. Zero means no deadline.
	Timeout time.Duration

	// OutDir receives the Markdown files. Empty writes each <name>.md next
	// to its input.
	OutDir string

	// Charset forces the input encoding label. Empty detects it per file.
	Charset string

	// Convert holds the conversion options applied to every file.
	Convert htmlmd.Options
}

// DefaultExtensions returns the default set of HTML file extensions.
func DefaultExtensions() []string {
	return []string{".html", ".htm"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// OutputPath returns where the Markdown for input is written. Inputs under
// workDir keep their relative layout below OutDir; others land in OutDir by
// base name.
func (o Options) OutputPath(input, workDir string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".md"
	if o.OutDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}

	outDir := o.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(workDir, outDir)
	}

	rel, err := filepath.Rel(workDir, filepath.Dir(input))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(outDir, rel, name)
}
