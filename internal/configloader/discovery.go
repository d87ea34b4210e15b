package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths holds the configuration files found for a run. An empty field
// means no file exists at that level.
type ConfigPaths struct {
	// System is the machine-wide file, e.g. /etc/htmlmd/config.yaml.
	System string

	// User is the per-user file, e.g. ~/.config/htmlmd/config.yaml.
	User string

	// Project is the nearest .htmlmd.yml at or above the working directory.
	Project string

	// Explicit is the --config path.
	Explicit string
}

// Candidate file names, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup tables.
var (
	projectConfigNames = []string{".htmlmd.yml", ".htmlmd.yaml", "htmlmd.yml", "htmlmd.yaml"}
	globalConfigNames  = []string{"config.yaml", "config.yml"}
	vcsMarkers         = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths locates the system, user and project config files for
// workDir. Missing files are not errors.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), globalConfigNames),
		User:    firstFile(userConfigDir(), globalConfigNames),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "htmlmd")
	}
	return "/etc/htmlmd"
}

// userConfigDir follows XDG on every platform, since CLI users expect
// ~/.config rather than ~/Library/Application Support.
func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "htmlmd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "htmlmd")
}

// FindProjectConfig walks from startDir towards the filesystem root and
// returns the first project config file found. The search ends at a VCS
// root or the home directory; "" means none was found.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}

		if path := firstFile(dir, projectConfigNames); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if isVCSRoot(dir) || dir == home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first of names that exists as a regular file in dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
