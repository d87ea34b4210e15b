package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Discover finds HTML files matching opts. Directories are walked
// recursively, skipping hidden entries and ExcludeGlobs; explicitly named
// files only need a matching extension and must not be excluded. It returns
// a sorted, de-duplicated list of absolute file paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	walker := &walker{
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		opts:       opts,
		seen:       make(map[string]struct{}),
	}

	for _, input := range opts.effectivePaths() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		absPath := input
		if !filepath.IsAbs(input) {
			absPath = filepath.Join(workDir, input)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if info.IsDir() {
			if err := walker.walk(ctx, absPath); err != nil {
				return nil, err
			}
			continue
		}
		if walker.matches(absPath) {
			walker.add(absPath)
		}
	}

	slices.Sort(walker.files)
	return walker.files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

type walker struct {
	workDir    string
	extensions []string
	opts       Options
	seen       map[string]struct{}
	files      []string
}

func (w *walker) add(path string) {
	if _, ok := w.seen[path]; ok {
		return
	}
	w.seen[path] = struct{}{}
	w.files = append(w.files, path)
}

func (w *walker) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || (path != root && w.excluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				//nolint:nilerr // Broken symlinks are skipped.
				return nil
			}
			if target.IsDir() {
				if !w.opts.FollowSymlinks || w.excluded(path) {
					return nil
				}
				realPath, err := filepath.EvalSymlinks(path)
				if err != nil {
					//nolint:nilerr // Unresolvable symlinks are skipped.
					return nil
				}
				// WalkDir does not follow a symlinked root, so walk the target.
				return w.walk(ctx, realPath)
			}
		}

		if w.matches(path) {
			w.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// matches reports whether a file has an HTML extension and is not excluded.
func (w *walker) matches(path string) bool {
	ext := filepath.Ext(path)
	if !slices.ContainsFunc(w.extensions, func(e string) bool { return strings.EqualFold(e, ext) }) {
		return false
	}
	return !w.excluded(path)
}

func (w *walker) excluded(path string) bool {
	rel, err := filepath.Rel(w.workDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.opts.ExcludeGlobs {
		if matchGlob(rel, filepath.ToSlash(pattern)) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated path against a glob pattern such as
// "*.htm", "drafts/**" or "**/vendor". A pattern without a slash also
// matches the base name. "**" matches any number of path segments.
func matchGlob(name, pattern string) bool {
	if !strings.Contains(pattern, "/") {
		if ok, _ := path.Match(pattern, path.Base(name)); ok {
			return true
		}
	}
	return matchSegments(strings.Split(name, "/"), strings.Split(pattern, "/"))
}

func matchSegments(name, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(name[i:], rest) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], name[0]); !ok {
			return false
		}
		name, pattern = name[1:], pattern[1:]
	}
	return len(name) == 0
}
