package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yaklabco/htmlmd"
	"github.com/yaklabco/htmlmd/internal/charset"
	"github.com/yaklabco/htmlmd/internal/configloader"
	"github.com/yaklabco/htmlmd/internal/logging"
	"github.com/yaklabco/htmlmd/pkg/fsutil"
	"github.com/yaklabco/htmlmd/pkg/reporter"
	"github.com/yaklabco/htmlmd/pkg/runner"
)

type convertFlags struct {
	fragment         bool
	autolinkHeadings bool
	detectLanguage   bool
	rule             string
	maxDepth         int
	charset          string
	jobs             int
	timeout          time.Duration
	output           string
	outDir           string
	exclude          []string
	format           string
}

// optionFlags maps conversion flags to option keys.
//
//nolint:gochecknoglobals // Read-only lookup table.
var optionFlags = map[string]string{
	"fragment":          htmlmd.KeyFragment,
	"autolink-headings": htmlmd.KeyEnableAutolinkHeadings,
	"rule":              htmlmd.KeyRule,
	"max-depth":         htmlmd.KeyMaxDepth,
	"detect-language":   htmlmd.KeyDetectLanguage,
}

func newConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert HTML files to Markdown",
		Long:  convertLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
	}

	addConvertFlags(cmd, flags)

	return cmd
}

const convertLongDescription = `Convert HTML to GitHub Flavored Markdown.

With no paths, reads HTML from stdin and writes Markdown to stdout (or
--output). With paths, converts every .html and .htm file found, writing
<name>.md next to each input or below --out-dir.

Examples:
  curl -s https://example.com | htmlmd convert     # Convert a page from stdin
  htmlmd convert page.html -o page.md              # Convert one file
  htmlmd convert site/ --out-dir docs/             # Convert a directory tree
  htmlmd convert site/ --rule - --autolink-headings
  htmlmd convert legacy/ --charset windows-1251 --timeout 5s`

func runConvert(cmd *cobra.Command, args []string, flags *convertFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return errors.Join(ErrIO, fmt.Errorf("get working directory: %w", err))
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Flags:        changedOptionFlags(cmd, flags),
	})
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	opts := loadResult.Options
	logger.Debug("configuration loaded",
		logging.FieldFragment, opts.Fragment,
		logging.FieldRule, string(opts.Rule),
		logging.FieldMaxDepth, opts.MaxDepth,
		logging.FieldJobs, flags.jobs,
		logging.FieldTimeout, flags.timeout,
	)

	if flags.timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", ErrUsage)
	}

	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		ExcludeGlobs: flags.exclude,
		Jobs:         flags.jobs,
		Timeout:      flags.timeout,
		OutDir:       flags.outDir,
		Charset:      flags.charset,
		Convert:      opts,
	}

	if len(args) == 0 {
		if flags.outDir != "" {
			return fmt.Errorf("%w: --out-dir needs file or directory arguments", ErrUsage)
		}
		return convertStdin(ctx, cmd, flags, runOpts)
	}

	if flags.output != "" {
		return fmt.Errorf("%w: --output applies to stdin input; use --out-dir with paths", ErrUsage)
	}
	return convertPaths(ctx, cmd, format, runOpts)
}

// convertStdin converts a single document read from stdin.
func convertStdin(ctx context.Context, cmd *cobra.Command, flags *convertFlags, opts runner.Options) error {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return fmt.Errorf("%w: refusing to read HTML from a terminal; pipe input or pass paths", ErrUsage)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Join(ErrIO, fmt.Errorf("read stdin: %w", err))
	}

	decoded, err := charset.Decode(data, flags.charset)
	if err != nil {
		return fmt.Errorf("decode stdin: %w", err)
	}

	logging.FromContext(ctx).Debug("read stdin",
		logging.FieldInputBytes, len(data),
		logging.FieldCharset, decoded.Charset,
	)

	markdown, err := runner.New().ConvertString(ctx, decoded.Text, opts)
	if err != nil {
		return fmt.Errorf("convert stdin: %w", err)
	}
	if markdown != "" {
		markdown += "\n"
	}

	if flags.output != "" {
		if err := fsutil.WriteAtomic(ctx, flags.output, []byte(markdown), fsutil.DefaultFileMode); err != nil {
			return errors.Join(ErrIO, err)
		}
		return nil
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), markdown); err != nil {
		return errors.Join(ErrIO, fmt.Errorf("write stdout: %w", err))
	}
	return nil
}

// convertPaths converts every HTML file under the given paths and reports
// the outcome on stderr.
func convertPaths(ctx context.Context, cmd *cobra.Command, format reporter.Format, opts runner.Options) error {
	logging.FromContext(ctx).Debug("starting conversion run",
		logging.FieldPaths, opts.Paths,
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldJobs, opts.Jobs,
	)

	result, err := runner.New().Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("conversion run: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:     cmd.ErrOrStderr(),
		Format:     format,
		Color:      colorMode,
		WorkingDir: opts.WorkingDir,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := rep.Report(ctx, result); err != nil {
		return errors.Join(ErrIO, err)
	}

	if result.HasFailures() {
		return ErrConversionFailed
	}
	return nil
}

// changedOptionFlags collects conversion option flags given on the command
// line, keyed like the config file.
func changedOptionFlags(cmd *cobra.Command, flags *convertFlags) map[string]any {
	values := make(map[string]any)
	for name, key := range optionFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		switch key {
		case htmlmd.KeyFragment:
			values[key] = flags.fragment
		case htmlmd.KeyEnableAutolinkHeadings:
			values[key] = flags.autolinkHeadings
		case htmlmd.KeyDetectLanguage:
			values[key] = flags.detectLanguage
		case htmlmd.KeyRule:
			values[key] = flags.rule
		case htmlmd.KeyMaxDepth:
			values[key] = flags.maxDepth
		}
	}
	return values
}

func addConvertFlags(cmd *cobra.Command, flags *convertFlags) {
	defaults := htmlmd.DefaultOptions()

	cmd.Flags().BoolVar(&flags.fragment, "fragment", defaults.Fragment,
		"treat input as a fragment; --fragment=false converts only the <body> of a document")
	cmd.Flags().BoolVar(&flags.autolinkHeadings, "autolink-headings", defaults.EnableAutolinkHeadings,
		"link heading text to the heading's slug")
	cmd.Flags().StringVar(&flags.rule, "rule", string(defaults.Rule), "thematic break character: *, - or _")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", defaults.MaxDepth, "maximum element nesting depth")
	cmd.Flags().BoolVar(&flags.detectLanguage, "detect-language", defaults.DetectLanguage,
		"guess a fence language for code blocks without one")
	cmd.Flags().StringVar(&flags.charset, "charset", "", "input encoding label (default: detect)")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-file conversion deadline (0 = none)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write stdin conversion to this file")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "directory for converted files (default: next to input)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().StringVar(&flags.format, "format", string(reporter.FormatText),
		"batch report format: text, table, summary, json")
}
