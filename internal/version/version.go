// Package version carries build-time version information.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the current released version. Overridable at build time:
//
//	go build -ldflags "-X github.com/tagwise/tagwise/internal/version.Version=v0.2.0"
var Version = "0.0.0-dev"

// GitCommit is the git commit hash at build time, set via ldflags.
var GitCommit = "unknown"

// GetCurrentVersion returns the version string for the given run mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return Version + "+" + mode
	}
	return Version
}

// IsVersionGreaterOrEqualThan returns true if version >= target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(normalize(version), normalize(target)) >= 0
}

func normalize(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
