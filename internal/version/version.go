// Package version holds the scancmp build version.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
// go build -ldflags "-X scancmp/internal/version.Version=0.3.1 -X scancmp/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// shortCommit is the length of an abbreviated commit hash.
const shortCommit = 7

// Info returns the version, with the abbreviated commit when known.
func Info() string {
	if Commit == "unknown" || len(Commit) <= shortCommit {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit[:shortCommit])
}

// Full returns the version, commit, build date and toolchain, one per line.
func Full() string {
	return fmt.Sprintf("scancmp version %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
