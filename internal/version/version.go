// Package version reports the build identity of the routeslip binary.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags "-X github.com/example/routeslip/internal/version.Commit=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line printed by --version.
func String() string {
	return fmt.Sprintf("routeslip %s (commit: %s, built: %s, %s)", Version, shortCommit(), BuildTime, runtime.Version())
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
