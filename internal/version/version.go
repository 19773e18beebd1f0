// Package version exposes build information for the NSx spike tools.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags.
var (
	// Version is the release version of the tool suite.
	Version = "0.1"

	// GitCommit is the sha1 the binary was built from.
	GitCommit = "unknown"

	// BuildDate is the UTC date of the build.
	BuildDate = "unknown"
)

// GetFullVersion returns the version with the abbreviated commit, for
// one-line banners.
func GetFullVersion() string {
	if GitCommit != "unknown" && len(GitCommit) > 7 {
		return fmt.Sprintf("%s-%s", Version, GitCommit[:7])
	}
	return Version
}

// GetVersionInfo returns the multi-line --version output for appName.
func GetVersionInfo(appName string) string {
	result := fmt.Sprintf("%s version %s", appName, GetFullVersion())
	if BuildDate != "unknown" {
		result += fmt.Sprintf("\nBuilt: %s", BuildDate)
	}
	result += fmt.Sprintf("\nGo: %s", runtime.Version())
	result += fmt.Sprintf("\nPlatform: %s/%s", runtime.GOOS, runtime.GOARCH)
	return result
}
