/*
Package version holds gh-repo-search build information and the release
update check.

Version values are injected by cmd/gh-repo-search through ldflags:

	go build -ldflags "-X main.buildVersion=v1.2.0 -X main.buildCommit=abc1234 -X main.buildDate=2026-10-16"

A binary built without them reports itself as a "dev" build, which the
update check never treats as outdated.
*/
package version

import (
	"runtime"
	"strings"
)

const devVersion = "dev"

var (
	// Version is the release tag, e.g. v1.2.0
	Version = devVersion
	// Commit is the short git commit hash
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// Set overrides the build information. Empty values are ignored.
func Set(version, commit, date string) {
	if v := strings.TrimSpace(version); v != "" {
		Version = v
	}
	if c := strings.TrimSpace(commit); c != "" {
		Commit = c
	}
	if d := strings.TrimSpace(date); d != "" {
		Date = d
	}
}

// IsDev reports whether this is an unreleased build.
func IsDev() bool {
	return Version == devVersion
}

// GetVersion returns version information as a formatted string
func GetVersion() string {
	return FormatVersion(Version, Commit, Date)
}

// FormatVersion formats version components into a display string
func FormatVersion(version, commit, date string) string {
	if version == devVersion {
		return version + " (development build)"
	}
	return version + " (commit: " + commit + ", built: " + date + ")"
}

// GetVersionComponents returns individual version components
func GetVersionComponents() (version, commit, date string) {
	return Version, Commit, Date
}

// UserAgent identifies the program to the GitHub API, which rejects
// requests without one.
func UserAgent() string {
	return RepoName + "/" + strings.TrimPrefix(Version, "v") + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
