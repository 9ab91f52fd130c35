//go:build darwin || freebsd || netbsd || openbsd

package serial

import "golang.org/x/sys/unix"

// drainOutput blocks until every byte already queued for transmission has
// left the driver, via the BSD-family TIOCDRAIN ioctl. sendBreak calls this
// first so BREAK never cuts off bytes still sitting in the output buffer.
func (a *unixAdapter) drainOutput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TIOCDRAIN, 0)
}

// interruptCounts has no BSD-family equivalent of Linux's TIOCGICOUNT; every
// field reports zero rather than a platform error.
func (a *unixAdapter) interruptCounts(fd int) (InterruptCounts, error) {
	return InterruptCounts{}, nil
}
