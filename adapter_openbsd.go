//go:build openbsd

package serial

import (
	"os"
	"regexp"

	"golang.org/x/sys/unix"
)

const (
	ioctlTcgetattr = unix.TIOCGETA
	ioctlTcsetattr = unix.TIOCSETA
	ioctlTcflsh    = unix.TIOCFLUSH
	ioctlTiocsbrk  = unix.TIOCSBRK
	ioctlTioccbrk  = unix.TIOCCBRK
)

const tcCRTSCTS uint32 = unix.CRTSCTS

var baudrateMap = map[int]uint32{
	Baud50: unix.B50, Baud75: unix.B75, Baud110: unix.B110, Baud134: unix.B134,
	Baud150: unix.B150, Baud200: unix.B200, Baud300: unix.B300, Baud600: unix.B600,
	Baud1200: unix.B1200, Baud1800: unix.B1800, Baud2400: unix.B2400, Baud4800: unix.B4800,
	Baud9600: unix.B9600, Baud19200: unix.B19200, Baud38400: unix.B38400, Baud57600: unix.B57600,
	Baud115200: unix.B115200, Baud230400: unix.B230400,
}

var databitsMap = map[int]uint32{
	DataBits5: unix.CS5, DataBits6: unix.CS6, DataBits7: unix.CS7, DataBits8: unix.CS8,
}

var devNameFilter = regexp.MustCompile(`^tty[0-9A-Za-z]+$`)

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

// setSpecialBaudrate sets Ispeed/Ospeed directly; OpenBSD's termios driver
// accepts arbitrary integer baud rates outside the enumerated Bxxx table.
func (a *unixAdapter) setSpecialBaudrate(fd int, speed uint32) error {
	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		return err
	}
	settings.Ispeed = speed
	settings.Ospeed = speed
	return unix.IoctlSetTermios(fd, ioctlTcsetattr, settings)
}
