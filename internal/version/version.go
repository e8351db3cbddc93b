// Package version carries the build identity stamped by the linker, for example
// -ldflags "-X github.com/kailas-cloud/searchsync/internal/version.Version=v1.2.0".
package version

import "fmt"

//nolint:gochecknoglobals // overwritten by ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build identity for CLI output and startup logs.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
