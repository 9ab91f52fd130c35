//go:build linux || darwin || freebsd || netbsd || openbsd

package enumerator

import (
	"os"
	"syscall"
	"time"

	"github.com/serialcore/uartcore/unixutils"
)

// ProbeReadable filters candidate port paths down to the ones backed by a
// live device right now, rather than a stale /dev entry left behind by a
// driver that unloaded without cleaning up. Each path is opened
// non-blocking and polled for read-readiness with a single multiplexed
// select call, so probing many candidates costs one syscall round trip
// instead of one per candidate.
func ProbeReadable(paths []string, timeout time.Duration) []string {
	type opened struct {
		path string
		f    *os.File
	}
	var live []opened
	defer func() {
		for _, o := range live {
			o.f.Close()
		}
	}()

	set := unixutils.NewFDSet()
	for _, p := range paths {
		f, err := os.OpenFile(p, os.O_RDONLY|syscall.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		live = append(live, opened{path: p, f: f})
		set.Add(int(f.Fd()))
	}
	if len(live) == 0 {
		return nil
	}

	res, err := unixutils.Select(set, nil, nil, timeout)
	if err != nil {
		out := make([]string, 0, len(live))
		for _, o := range live {
			out = append(out, o.path)
		}
		return out
	}

	out := make([]string, 0, len(live))
	for _, o := range live {
		if res.IsReadable(int(o.f.Fd())) {
			out = append(out, o.path)
		}
	}
	return out
}
