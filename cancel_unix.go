//go:build linux || darwin || freebsd || netbsd || openbsd

package serial

import (
	"time"

	"github.com/creack/goselect"
	"github.com/serialcore/uartcore/unixutils"
)

// cancelableWait lets listen implementations block in a native select/read
// call while still reacting promptly to stop being closed. It is built from
// a self-pipe: interrupt writes a byte nobody reads, waking any select()
// blocked on both fds. The Unix listen runs one helper goroutine that calls
// interrupt once stop is closed.
type cancelableWait struct {
	cancel *unixutils.Pipe
}

func newCancelableWait() (*cancelableWait, error) {
	p, err := unixutils.NewPipe()
	if err != nil {
		return nil, err
	}
	return &cancelableWait{cancel: p}, nil
}

func (c *cancelableWait) close() error {
	return c.cancel.Close()
}

// interrupt wakes up any goroutine blocked in waitReadable.
func (c *cancelableWait) interrupt() {
	_, _ = c.cancel.Write([]byte{0})
}

// waitReadable blocks until fd is readable, the self-pipe is signaled, or
// timeout elapses (a zero timeout waits forever). It reports cancel=true
// when the self-pipe fired rather than fd.
func (c *cancelableWait) waitReadable(fd int, timeout time.Duration) (ready, cancel bool, err error) {
	cancelFD := c.cancel.ReadFD()

	rd := &goselect.FDSet{}
	rd.Set(uintptr(fd))
	rd.Set(uintptr(cancelFD))

	max := fd
	if cancelFD > max {
		max = cancelFD
	}

	d := timeout
	if d == 0 {
		d = -1
	}
	if err := goselect.Select(max+1, rd, nil, nil, d); err != nil {
		return false, false, err
	}

	if rd.IsSet(uintptr(cancelFD)) {
		return false, true, nil
	}
	return rd.IsSet(uintptr(fd)), false, nil
}
