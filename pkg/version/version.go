// Package version reports the build version of sequestra.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags "-X github.com/rshade/sequestra/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // ldflags targets must be package variables.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// GetVersion returns the build version, "dev" for local builds.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// IsRelease reports whether the version is a semantic version without a
// prerelease suffix.
func IsRelease() bool {
	return isRelease(version)
}

func isRelease(v string) bool {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	return parsed.Prerelease() == ""
}

// Info returns the one-line version banner. Builds whose version is not a
// release are marked as development builds.
func Info() string {
	banner := fmt.Sprintf("sequestra %s (commit %s, built %s, %s/%s)",
		version, commit, buildDate, runtime.GOOS, runtime.GOARCH)
	if !IsRelease() {
		banner += " [development build]"
	}
	return banner
}
