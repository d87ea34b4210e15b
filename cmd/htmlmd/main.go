// Package main is the entry point for the htmlmd CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/htmlmd/internal/cli"
	"github.com/yaklabco/htmlmd/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrConversionFailed) {
		// Batch failures were already reported per file.
		logging.Default().Error("command failed", logging.FieldError, err)
	}
	return cli.ExitCodeFromError(err)
}
