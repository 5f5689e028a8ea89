package version

import "fmt"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String describes the build of the gvars binary.
func String() string {
	return fmt.Sprintf("gvars %s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
