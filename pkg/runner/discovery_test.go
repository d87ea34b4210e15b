package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlmd/pkg/runner"
)

// tree creates files relative to dir, each holding a small HTML body.
func tree(t *testing.T, dir string, files ...string) {
	t.Helper()

	for _, name := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("<p>"+name+"</p>"), 0o600))
	}
}

func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()

	out := make([]string, 0, len(files))
	for _, file := range files {
		r, err := filepath.Rel(dir, file)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   []string
		paths   []string
		exclude []string
		exts    []string
		want    []string
	}{
		{
			name:  "single file",
			files: []string{"index.html", "other.html"},
			paths: []string{"index.html"},
			want:  []string{"index.html"},
		},
		{
			name:  "directory walk filters extensions",
			files: []string{"index.html", "docs/guide.htm", "docs/API.HTML", "src/main.go", "notes.txt", "readme.md"},
			want:  []string{"docs/API.HTML", "docs/guide.htm", "index.html"},
		},
		{
			name:  "hidden files and directories are skipped",
			files: []string{"index.html", ".hidden.html", ".cache/page.html", "docs/.draft.html"},
			want:  []string{"index.html"},
		},
		{
			name:    "exclude globs",
			files:   []string{"index.html", "drafts/a.html", "site/vendor/lib.html", "site/page.htm", "site/keep.html"},
			exclude: []string{"drafts/**", "**/vendor", "*.htm"},
			want:    []string{"index.html", "site/keep.html"},
		},
		{
			name:  "multiple paths are merged and de-duplicated",
			files: []string{"a/one.html", "b/two.html", "c/three.html"},
			paths: []string{"b", "a", "a/one.html"},
			want:  []string{"a/one.html", "b/two.html"},
		},
		{
			name:  "custom extensions",
			files: []string{"page.xhtml", "page.html"},
			exts:  []string{".xhtml"},
			want:  []string{"page.xhtml"},
		},
		{
			name:  "named file with wrong extension is ignored",
			files: []string{"notes.txt"},
			paths: []string{"notes.txt"},
			want:  []string{},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tree(t, dir, testCase.files...)

			files, err := runner.Discover(context.Background(), runner.Options{
				Paths:        testCase.paths,
				WorkingDir:   dir,
				ExcludeGlobs: testCase.exclude,
				Extensions:   testCase.exts,
			})
			require.NoError(t, err)
			assert.Equal(t, testCase.want, rel(t, dir, files))
			for _, file := range files {
				assert.True(t, filepath.IsAbs(file), file)
			}
		})
	}
}

func TestDiscover_DeterministicOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tree(t, dir, "z.html", "m/b.html", "a.html", "m/a.html")

	opts := runner.Options{WorkingDir: dir}
	first, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)

	for range 5 {
		again, err := runner.Discover(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.IsNonDecreasing(t, first)
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing"},
		WorkingDir: t.TempDir(),
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tree(t, dir, "index.html")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tree(t, dir, "real/doc.html", "page.html")

	if err := os.Symlink(filepath.Join(dir, "page.html"), filepath.Join(dir, "link.html")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.html"), filepath.Join(dir, "broken.html")))

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.html", "page.html", "real/doc.html"}, rel(t, dir, files))

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.html", "page.html", "real/doc.html"}, rel(t, dir, files),
		"followed directory symlinks resolve to the real path")
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".html", ".htm"}, runner.DefaultExtensions())
}

func TestOptions_OutputPath(t *testing.T) {
	t.Parallel()

	workDir := filepath.FromSlash("/work")
	tests := []struct {
		name   string
		outDir string
		input  string
		want   string
	}{
		{name: "next to input", input: "/work/docs/page.html", want: "/work/docs/page.md"},
		{name: "htm extension", input: "/work/page.htm", want: "/work/page.md"},
		{name: "relative out dir mirrors layout", outDir: "out", input: "/work/docs/page.html", want: "/work/out/docs/page.md"},
		{name: "absolute out dir", outDir: "/md", input: "/work/page.html", want: "/md/page.md"},
		{name: "input outside working dir", outDir: "/md", input: "/elsewhere/a/page.html", want: "/md/page.md"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			opts := runner.Options{OutDir: filepath.FromSlash(testCase.outDir)}
			got := opts.OutputPath(filepath.FromSlash(testCase.input), workDir)
			assert.Equal(t, filepath.FromSlash(testCase.want), got)
		})
	}
}
