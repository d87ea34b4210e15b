//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const binary = "bin/htmlmd"

//nolint:gochecknoglobals // stave reads these by name.
var (
	Default = Build

	Aliases = map[string]any{
		"b":     Build,
		"t":     Test.Default,
		"l":     Lint.Default,
		"c":     Check,
		"fmt":   Lint.Fmt,
		"smoke": Smoke,
	}
)

type (
	Test st.Namespace
	Lint st.Namespace
	CI   st.Namespace
)

// Build compiles htmlmd with version info when sources changed.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "convert.go", "errors.go", "options.go", "go.mod")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building htmlmd...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/htmlmd")
}

// Check formats, lints and tests, in that order.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

//nolint:gochecknoglobals // Build outputs removed by Clean.
var artifacts = []string{"bin", "coverage.out", "coverage.html"}

// Clean removes the binary and coverage outputs.
func Clean() error {
	var errs []error
	for _, path := range artifacts {
		errs = append(errs, sh.Rm(path))
	}
	return errors.Join(errs...)
}

// Install puts htmlmd in $GOBIN with version info.
func Install() error {
	fmt.Println("Installing htmlmd...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/htmlmd")
}

// Smoke converts a small document through the built binary.
func Smoke() error {
	st.Deps(Build)
	in, err := os.CreateTemp("", "htmlmd-smoke-*.html")
	if err != nil {
		return fmt.Errorf("create input: %w", err)
	}
	defer os.Remove(in.Name())

	if _, err := in.WriteString("<h1>Smoke</h1><ul><li>ok</li></ul>"); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	if err := in.Close(); err != nil {
		return fmt.Errorf("close input: %w", err)
	}

	out, err := sh.Output("sh", "-c", binary+" convert < "+in.Name())
	if err != nil {
		return err
	}
	if want := "# Smoke\n\n* ok"; out != want {
		return fmt.Errorf("smoke output %q, want %q", out, want)
	}
	fmt.Println("smoke ok")
	return nil
}

// Default runs the test suite under gotestsum with the race detector and a
// coverage profile. STAVE_NUM_PROCESSORS bounds package and test parallelism.
func (Test) Default() error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	args := []string{
		"tool", "gotestsum", "-f", "pkgname-and-test-fails", "--",
		"-race", "-p", procs, "-parallel", procs,
		"-coverprofile=coverage.out", "-covermode=atomic",
		"./...",
	}
	return sh.RunV("go", args...)
}

// Cover renders coverage.out as HTML.
func (Test) Cover() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Fuzz runs each fuzz target for a short time.
func (Test) Fuzz() error {
	targets := []struct{ pkg, name string }{
		{"./pkg/parser/html", "FuzzParse"},
		{"./pkg/fsutil", "FuzzWriteAtomic"},
		{"./pkg/fsutil", "FuzzReadFileCheckModified"},
		{".", "FuzzConvert"},
	}
	fuzztime := "-fuzztime=" + cmp.Or(os.Getenv("FUZZTIME"), "30s")
	for _, fuzz := range targets {
		fmt.Printf("fuzz %s in %s\n", fuzz.name, fuzz.pkg)
		if err := sh.RunV("go", "test", "-run=^$", "-fuzz=^"+fuzz.name+"$", fuzztime, fuzz.pkg); err != nil {
			return fmt.Errorf("%s: %w", fuzz.name, err)
		}
	}
	return nil
}

// Bench runs every benchmark with allocation counts.
func (Test) Bench() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Default runs golangci-lint and applies its fixes.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt rewrites Go sources with gofmt.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck lists unformatted files and fails if there are any.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt check failed: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Gate is the full CI sequence; the first failure stops it.
func (CI) Gate() error {
	st.SerialDeps(Lint.FmtCheck, CI.Vet, CI.Lint, Build, Test.Default, CI.ModTidy)
	fmt.Println("ci gate passed")
	return nil
}

func (CI) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint in report-only mode.
func (CI) Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// ModTidy fails when go mod tidy would change go.mod or go.sum.
func (CI) ModTidy() error {
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	if err := sh.RunV("git", "diff", "--exit-code", "--", "go.mod", "go.sum"); err != nil {
		return errors.New("go.mod or go.sum is not tidy; commit the result of 'go mod tidy'")
	}
	return nil
}

// gitOutput returns trimmed git output, or "" outside a repository.
func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags stamps version, commit and build date into main.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
