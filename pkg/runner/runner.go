package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/yaklabco/htmlmd"
	"github.com/yaklabco/htmlmd/internal/charset"
	"github.com/yaklabco/htmlmd/internal/logging"
	"github.com/yaklabco/htmlmd/pkg/fsutil"
)

// ErrTimeout marks a conversion abandoned at its per-file deadline.
var ErrTimeout = errors.New("conversion timed out")

// ErrModified marks an input that changed while it was being converted.
var ErrModified = errors.New("input modified during conversion")

// ConvertFunc converts one decoded HTML document.
type ConvertFunc func(ctx context.Context, html string, opts htmlmd.Options) (string, error)

// Runner converts batches of HTML files on a worker pool.
type Runner struct {
	// Convert performs the conversion. Defaults to htmlmd.ConvertContext.
	Convert ConvertFunc
}

// New creates a Runner that uses htmlmd.ConvertContext.
func New() *Runner {
	return &Runner{Convert: htmlmd.ConvertContext}
}

// Run discovers files under opts.Paths and converts them concurrently.
// It returns outcomes in path order and aggregate stats. A failing file does
// not stop the run; only discovery errors and cancellation are returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	if err := opts.Convert.Validate(); err != nil {
		return nil, err
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	opts.WorkingDir = workDir

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	logger.Debug("discovered files", logging.FieldFilesDiscovered, len(files))

	if len(files) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			r.worker(ctx, workCh, outCh, opts)
		})
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers finish out of order.
	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}
	result.Duration = time.Since(start)

	logger.Debug("batch finished",
		logging.FieldFilesConverted, result.Stats.FilesConverted,
		logging.FieldFilesFailed, result.Stats.FilesFailed,
		logging.FieldDuration, result.Duration,
	)

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker converts files from workCh and sends outcomes to outCh.
func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome, opts Options) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.ConvertFile(ctx, path, opts)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// ConvertFile converts a single file: read, decode, convert under the
// per-file deadline, then write the Markdown atomically unless the input
// changed in the meantime.
func (r *Runner) ConvertFile(ctx context.Context, path string, opts Options) FileOutcome {
	start := time.Now()
	ctx, logger := logging.With(ctx, logging.FieldPath, path)

	outcome := FileOutcome{Path: path, Output: opts.OutputPath(path, opts.WorkingDir)}
	fail := func(status Status, err error) FileOutcome {
		outcome.Status = status
		outcome.Error = fmt.Errorf("%s: %w", path, err)
		outcome.Duration = time.Since(start)
		logger.Debug("conversion failed", logging.FieldError, err)
		return outcome
	}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return fail(StatusFailed, err)
	}
	outcome.InputBytes = len(content)

	decoded, err := charset.Decode(content, opts.Charset)
	if err != nil {
		return fail(StatusFailed, err)
	}
	outcome.Charset = decoded.Charset

	markdown, err := r.ConvertString(ctx, decoded.Text, opts)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return fail(StatusTimedOut, err)
		}
		return fail(StatusFailed, err)
	}
	if markdown != "" {
		markdown += "\n"
	}
	outcome.OutputBytes = len(markdown)

	modified, err := fsutil.CheckModified(ctx, info)
	if err != nil {
		return fail(StatusFailed, err)
	}
	if modified {
		outcome.Status = StatusSkipped
		outcome.Error = nil
		outcome.OutputBytes = 0
		outcome.Duration = time.Since(start)
		logger.Debug("skipped", logging.FieldError, ErrModified)
		return outcome
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, outcome.Output, []byte(markdown), fsutil.DefaultFileMode)
	if err != nil {
		return fail(StatusFailed, err)
	}

	outcome.Status = StatusUnchanged
	if written {
		outcome.Status = StatusWritten
	}
	outcome.Duration = time.Since(start)

	logger.Debug("converted file",
		logging.FieldOutput, outcome.Output,
		logging.FieldCharset, outcome.Charset,
		logging.FieldInputBytes, outcome.InputBytes,
		logging.FieldOutputBytes, outcome.OutputBytes,
		logging.FieldDuration, outcome.Duration,
	)

	return outcome
}

type conversion struct {
	markdown string
	err      error
}

// ConvertString converts decoded HTML with opts.Convert under opts.Timeout.
// The conversion runs on its own goroutine; when the deadline fires first
// the result is abandoned and the buffered channel lets the goroutine finish
// without a receiver.
func (r *Runner) ConvertString(ctx context.Context, html string, opts Options) (string, error) {
	convert := r.Convert
	if convert == nil {
		convert = htmlmd.ConvertContext
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	done := make(chan conversion, 1)
	go func() {
		markdown, err := convert(ctx, html, opts.Convert)
		done <- conversion{markdown: markdown, err: err}
	}()

	select {
	case res := <-done:
		return res.markdown, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
		}
		return "", fmt.Errorf("conversion cancelled: %w", ctx.Err())
	}
}
