package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlmd"
	"github.com/yaklabco/htmlmd/internal/logging"
	"github.com/yaklabco/htmlmd/pkg/runner"
)

func options(dir string) runner.Options {
	return runner.Options{WorkingDir: dir, Convert: htmlmd.DefaultOptions()}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.New().Run(context.Background(), options(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.False(t, result.HasFailures())
	assert.NoError(t, result.Err())
}

func TestRunner_Run_ConvertsFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<h2>Web tool</h2><p>Hello World</p>")
	writeHTML(t, dir, "docs/rule.htm", "<hr>")

	result, err := runner.New().Run(context.Background(), options(dir))
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, 2, result.Stats.FilesDiscovered)
	assert.Equal(t, 2, result.Stats.FilesConverted)
	assert.Equal(t, 2, result.Stats.FilesWritten)
	assert.False(t, result.HasFailures())

	assert.Equal(t, "***\n", readOutput(t, filepath.Join(dir, "docs", "rule.md")))
	assert.Equal(t, "## Web tool\n\nHello World\n", readOutput(t, filepath.Join(dir, "index.md")))

	first := result.Files[0]
	assert.Equal(t, filepath.Join(dir, "docs", "rule.htm"), first.Path)
	assert.Equal(t, filepath.Join(dir, "docs", "rule.md"), first.Output)
	assert.Equal(t, runner.StatusWritten, first.Status)
	assert.Equal(t, "utf-8", first.Charset)
	assert.Equal(t, len("<hr>"), first.InputBytes)
	assert.Equal(t, len("***\n"), first.OutputBytes)
}

func TestRunner_Run_OutDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "site/docs/page.html", "<p>x</p>")

	opts := options(dir)
	opts.Paths = []string{"site"}
	opts.OutDir = "out"

	result, err := runner.New().Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	assert.Equal(t, "x\n", readOutput(t, filepath.Join(dir, "out", "site", "docs", "page.md")))
	assert.NoFileExists(t, filepath.Join(dir, "site", "docs", "page.md"))
}

func TestRunner_Run_UnchangedOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<p>same</p>")

	r := runner.New()
	_, err := r.Run(context.Background(), options(dir))
	require.NoError(t, err)

	result, err := r.Run(context.Background(), options(dir))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.FilesUnchanged)
	assert.Zero(t, result.Stats.FilesWritten)
	assert.Equal(t, runner.StatusUnchanged, result.Files[0].Status)
}

func TestRunner_Run_ConversionOptions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<hr>")

	opts := options(dir)
	opts.Convert.Rule = '_'

	_, err := runner.New().Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "___\n", readOutput(t, filepath.Join(dir, "index.md")))
}

func TestRunner_Run_InvalidOptions(t *testing.T) {
	t.Parallel()

	opts := options(t.TempDir())
	opts.Convert.Rule = '#'

	_, err := runner.New().Run(context.Background(), opts)
	require.ErrorIs(t, err, htmlmd.ErrUnsupportedOption)
}

func TestRunner_Run_Charset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// "café" in ISO-8859-2 with a meta declaration.
	latin2 := append([]byte(`<meta charset="iso-8859-2"><p>caf`), 0xE9, '<', '/', 'p', '>')
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latin.html"), latin2, 0o600))

	result, err := runner.New().Run(context.Background(), options(dir))
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "iso-8859-2", result.Files[0].Charset)
	assert.Equal(t, "café\n", readOutput(t, filepath.Join(dir, "latin.md")))
}

func TestRunner_Run_ExplicitCharset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<p>x</p>")

	opts := options(dir)
	opts.Charset = "no-such-charset"

	result, err := runner.New().Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, runner.StatusFailed, result.Files[0].Status)
	assert.True(t, result.HasFailures())
}

func TestRunner_Run_FailuresDoNotStopTheBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "a.html", strings.Repeat("<div>", 50))
	writeHTML(t, dir, "b.html", "<p>ok</p>")

	opts := options(dir)
	opts.Convert.MaxDepth = 10

	result, err := runner.New().Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, runner.StatusFailed, result.Files[0].Status)
	require.ErrorIs(t, result.Files[0].Error, htmlmd.ErrDepthExceeded)
	assert.Contains(t, result.Files[0].Error.Error(), filepath.Join(dir, "a.html"))
	assert.NoFileExists(t, filepath.Join(dir, "a.md"))

	assert.Equal(t, runner.StatusWritten, result.Files[1].Status)
	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.Equal(t, 1, result.Stats.FilesConverted)
	require.ErrorIs(t, result.Err(), htmlmd.ErrDepthExceeded)
}

func TestRunner_Run_Timeout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "slow.html", "<p>slow</p>")
	writeHTML(t, dir, "fast.html", "<p>fast</p>")

	release := make(chan struct{})
	defer close(release)

	r := &runner.Runner{Convert: func(ctx context.Context, html string, opts htmlmd.Options) (string, error) {
		if strings.Contains(html, "slow") {
			<-release
		}
		return htmlmd.ConvertContext(ctx, html, opts)
	}}

	opts := options(dir)
	opts.Timeout = 50 * time.Millisecond

	result, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	assert.Equal(t, runner.StatusWritten, result.Files[0].Status)
	slow := result.Files[1]
	assert.Equal(t, runner.StatusTimedOut, slow.Status)
	require.ErrorIs(t, slow.Error, runner.ErrTimeout)
	assert.Equal(t, 1, result.Stats.FilesTimedOut)
	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.NoFileExists(t, filepath.Join(dir, "slow.md"))
}

func TestRunner_Run_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := range 20 {
		writeHTML(t, dir, filepath.Join("pages", string(rune('a'+i))+".html"), "<ul><li>item</li></ul>")
	}

	serial := options(dir)
	serial.Jobs = 1
	serial.OutDir = "serial"
	parallel := options(dir)
	parallel.Jobs = 8
	parallel.OutDir = "parallel"
	parallel.Paths = []string{"pages"}
	serial.Paths = []string{"pages"}

	first, err := runner.New().Run(context.Background(), serial)
	require.NoError(t, err)
	second, err := runner.New().Run(context.Background(), parallel)
	require.NoError(t, err)

	require.Len(t, second.Files, len(first.Files))
	for i := range first.Files {
		assert.Equal(t, first.Files[i].Path, second.Files[i].Path)
		assert.Equal(t, readOutput(t, first.Files[i].Output), readOutput(t, second.Files[i].Output))
	}
}

func TestRunner_Run_ConcurrentWorkers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i := range 12 {
		writeHTML(t, dir, string(rune('a'+i))+".html", "<p>x</p>")
	}

	var calls atomic.Int32
	r := &runner.Runner{Convert: func(ctx context.Context, html string, opts htmlmd.Options) (string, error) {
		calls.Add(1)
		return htmlmd.ConvertContext(ctx, html, opts)
	}}

	opts := options(dir)
	opts.Jobs = 4
	result, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(12), calls.Load())
	assert.Equal(t, 12, result.Stats.FilesWritten)
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<p>x</p>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.New().Run(ctx, options(dir))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ConvertFile_Logs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<p>x</p>")

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&buf, "debug"))

	outcome := runner.New().ConvertFile(ctx, filepath.Join(dir, "index.html"), options(dir))
	require.NoError(t, outcome.Error)
	assert.Contains(t, buf.String(), "converted file")
	assert.Contains(t, buf.String(), "charset=utf-8")
}

func TestRunner_ConvertFile_ConverterError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHTML(t, dir, "index.html", "<p>x</p>")

	boom := errors.New("boom")
	r := &runner.Runner{Convert: func(context.Context, string, htmlmd.Options) (string, error) {
		return "", boom
	}}

	outcome := r.ConvertFile(context.Background(), filepath.Join(dir, "index.html"), options(dir))
	assert.Equal(t, runner.StatusFailed, outcome.Status)
	require.ErrorIs(t, outcome.Error, boom)
}

func TestResult_HasFailures(t *testing.T) {
	t.Parallel()

	var nilResult *runner.Result
	assert.False(t, nilResult.HasFailures())
	assert.NoError(t, nilResult.Err())
	assert.True(t, (&runner.Result{Stats: runner.Stats{FilesFailed: 1}}).HasFailures())
}

func writeHTML(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
