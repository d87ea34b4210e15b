// Package cli wires the htmlmd commands onto cobra.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/htmlmd/internal/logging"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug  bool
	config string
	color  string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")
	flags.StringVar(&g.config, "config", "", "path to config file")
	flags.StringVar(&g.color, "color", "auto", "colorize output: auto, always, never")
}

// NewRootCommand builds the htmlmd command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "htmlmd",
		Short: "Convert HTML to GitHub Flavored Markdown",
		Long: `htmlmd converts HTML documents and fragments to GitHub Flavored Markdown.

It recovers from malformed markup, renders tables, task lists and
strikethrough the way GitHub does, and converts whole directory trees
concurrently with per-file deadlines.`,
		PersistentPreRun: func(*cobra.Command, []string) {
			if globals.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	globals.register(rootCmd)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})
	rootCmd.AddCommand(newConvertCommand(), newVersionCommand(info))
	NewHelpFormatter(&globals.color).ApplyToCommand(rootCmd)

	return rootCmd
}
