package config

import (
	"os"
	"path/filepath"
)

// EnvProjectDir overrides project directory discovery.
const EnvProjectDir = "SEQUESTRA_PROJECT_DIR"

// ResolveProjectDir determines the project-local .sequestra directory.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. SEQUESTRA_PROJECT_DIR env var
//  3. walking up from startDir to the first directory holding .sequestra/
//
// Returns an absolute path, or "" when no project is found. Read-only.
func ResolveProjectDir(flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(flagValue)
	}
	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(envDir)
	}
	if startDir == "" {
		return ""
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	global := GetConfigDir()
	for {
		candidate := filepath.Join(dir, dirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() && candidate != global {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// toAbsProjectDir makes dir absolute and appends .sequestra unless present.
func toAbsProjectDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if filepath.Base(abs) == dirName {
		return abs
	}
	return filepath.Join(abs, dirName)
}
