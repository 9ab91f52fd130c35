//go:build linux

package serial

import (
	"os"
	"regexp"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ioctlTcgetattr = unix.TCGETS
	ioctlTcsetattr = unix.TCSETS
	ioctlTcflsh    = unix.TCFLSH
	ioctlTiocsbrk  = unix.TIOCSBRK
	ioctlTioccbrk  = unix.TIOCCBRK
	ioctlFionread  = unix.TIOCINQ
)

const tcCRTSCTS uint32 = unix.CRTSCTS

var baudrateMap = map[int]uint32{
	Baud50: unix.B50, Baud75: unix.B75, Baud110: unix.B110, Baud134: unix.B134,
	Baud150: unix.B150, Baud200: unix.B200, Baud300: unix.B300, Baud600: unix.B600,
	Baud1200: unix.B1200, Baud1800: unix.B1800, Baud2400: unix.B2400, Baud4800: unix.B4800,
	Baud9600: unix.B9600, Baud19200: unix.B19200, Baud38400: unix.B38400, Baud57600: unix.B57600,
	Baud115200: unix.B115200, Baud230400: unix.B230400, Baud460800: unix.B460800, Baud921600: unix.B921600,
}

var databitsMap = map[int]uint32{
	DataBits5: unix.CS5, DataBits6: unix.CS6, DataBits7: unix.CS7, DataBits8: unix.CS8,
}

var devNameFilter = regexp.MustCompile(`^(ttyS|ttyUSB|ttyACM|ttyAMA|rfcomm|ttyO)[0-9]{1,3}$`)

func nativeGetPortsList() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}
	ports := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !devNameFilter.MatchString(e.Name()) {
			continue
		}
		ports = append(ports, "/dev/"+e.Name())
	}
	return ports, nil
}

// setSpecialBaudrate configures a custom baud rate via the BOTHER termios
// extension (TCGETS2/TCSETS2), unavailable on ppc64le.
func (a *unixAdapter) setSpecialBaudrate(fd int, speed uint32) error {
	return setSpecialBaudrateLinux(fd, speed)
}

// drainOutput waits for the kernel driver to finish transmitting queued
// bytes, via the POSIX-on-Linux TCSBRK(1) idiom (distinct from the
// TIOCSBRK/TIOCCBRK ioctls sendBreak uses to signal BREAK).
func (a *unixAdapter) drainOutput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCSBRK, 1)
}

// serialIcounter mirrors struct serial_icounter_struct from
// <linux/serial.h>; x/sys/unix exposes the ioctl number but not a typed
// wrapper for its payload.
type serialIcounter struct {
	Cts, Dsr, Rng, Dcd                   int32
	Rx, Tx                               int32
	Frame, Overrun, Parity, Brk          int32
	BufOverrun                           int32
	reserved                             [9]int32
}

// interruptCounts reads the Linux-specific TIOCGICOUNT diagnostic vector;
// every other platform reports all-zero via the generic fallback.
func (a *unixAdapter) interruptCounts(fd int) (InterruptCounts, error) {
	var counts serialIcounter
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.TIOCGICOUNT), uintptr(unsafe.Pointer(&counts)))
	if errno != 0 {
		return InterruptCounts{}, errno
	}
	return InterruptCounts{
		CTS: int(counts.Cts), DSR: int(counts.Dsr), Ring: int(counts.Rng), DCD: int(counts.Dcd),
		RxBytes: int(counts.Rx), TxBytes: int(counts.Tx),
		FrameErrors: int(counts.Frame), Overruns: int(counts.Overrun), ParityErrors: int(counts.Parity),
		Breaks: int(counts.Brk), BufferOverruns: int(counts.BufOverrun),
	}, nil
}
