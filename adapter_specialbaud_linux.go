//go:build linux && !ppc64le

package serial

import "golang.org/x/sys/unix"

func setSpecialBaudrateLinux(fd int, speed uint32) error {
	settings, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		return err
	}
	settings.Cflag &^= unix.CBAUD
	settings.Cflag |= unix.BOTHER
	settings.Ispeed = speed
	settings.Ospeed = speed
	return unix.IoctlSetTermios(fd, unix.TCSETS2, settings)
}
