// Package version holds build-time version information.
package version

import "fmt"

// Populated via -ldflags at build time.
var (
	Version = "0.1.0"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single-line version description.
func Info() string {
	return fmt.Sprintf("dsbridge %s (commit %s, built %s)", Version, Commit, Date)
}
