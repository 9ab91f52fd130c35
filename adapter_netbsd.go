//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serial

import (
	"math"
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

// see tty(4), ucom(4), zstty(4), ...
var devNameFilter = regexp.MustCompile(`^([dt]ty[a-d]|[dt]ty[0-9]+|[dt]ty[CBZ][0-9]+|[dt]tyU[0-9]+)$`)

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

// setSpecialBaudrate sets Ispeed/Ospeed directly, per NetBSD's cfsetspeed:
// https://nxr.netbsd.org/xref/src/lib/libc/termios/cfsetspeed.c
func (a *unixAdapter) setSpecialBaudrate(fd int, speed uint32) error {
	if speed < 50 || speed > math.MaxInt32 {
		return ioError("configure_data", -5)
	}
	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		return err
	}
	settings.Ispeed = int32(speed)
	settings.Ospeed = int32(speed)
	return unix.IoctlSetTermios(fd, ioctlTcsetattr, settings)
}
