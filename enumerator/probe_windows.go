//go:build windows

package enumerator

import "time"

// ProbeReadable has no cheap non-blocking readiness primitive on Windows
// COM handles (CreateFile on a port that isn't there simply fails), so
// every candidate that made it this far is reported live as-is.
func ProbeReadable(paths []string, timeout time.Duration) []string {
	return paths
}
