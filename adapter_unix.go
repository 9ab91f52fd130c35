//go:build linux || darwin || freebsd || netbsd || openbsd

package serial

import (
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// unixAdapter implements nativeAdapter on every POSIX target this library
// supports. OS-specific pieces (ioctl request numbers, baud/data-bits
// lookup tables, and setSpecialBaudrate) are supplied by adapter_<os>.go.
type unixAdapter struct{}

func newNativeAdapter() nativeAdapter {
	return &unixAdapter{}
}

func (a *unixAdapter) open(portName string, enableRead, enableWrite, exclusive bool) (int, error) {
	flags := unix.O_NOCTTY | unix.O_NDELAY
	switch {
	case enableRead && enableWrite:
		flags |= unix.O_RDWR
	case enableRead:
		flags |= unix.O_RDONLY
	case enableWrite:
		flags |= unix.O_WRONLY
	}

	fd, err := unix.Open(portName, flags, 0)
	if err != nil {
		switch err {
		case unix.EBUSY:
			return 0, ioError("open", -1)
		case unix.ENOENT:
			return 0, ioError("open", -2)
		case unix.EACCES:
			return 0, ioError("open", -4)
		}
		return 0, err
	}

	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		unix.Close(fd)
		return 0, ioError("open", -3)
	}

	settings.Cflag |= unix.CREAD | unix.CLOCAL
	settings.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHOK | unix.ECHONL | unix.ISIG | unix.IEXTEN
	settings.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY | unix.INPCK | unix.IGNPAR | unix.PARMRK |
		unix.ISTRIP | unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.IGNCR | unix.ICRNL
	settings.Oflag &^= unix.OPOST
	settings.Cc[unix.VMIN] = 1
	settings.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlTcsetattr, settings); err != nil {
		unix.Close(fd)
		return 0, ioError("open", -3)
	}

	unix.SetNonblock(fd, false)

	if exclusive {
		_ = unix.IoctlSetInt(fd, unix.TIOCEXCL, 0)
	}

	return fd, nil
}

func (a *unixAdapter) close(fd int) error {
	_ = unix.IoctlSetInt(fd, unix.TIOCNXCL, 0)
	return unix.Close(fd)
}

func (a *unixAdapter) read(fd int, buf []byte) (int, AdapterStatus, error) {
	n, err := unix.Read(fd, buf)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, StatusNoData, nil
	}
	if err != nil {
		return 0, StatusErrorCode, ioErr("read", -12, err)
	}
	if n == 0 {
		return 0, StatusEOF, nil
	}
	return n, StatusData, nil
}

func (a *unixAdapter) write(fd int, buf []byte, interByteDelay time.Duration) (int, error) {
	if interByteDelay <= 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			return n, ioErr("write", -11, err)
		}
		return n, nil
	}
	total := 0
	for _, b := range buf {
		n, err := unix.Write(fd, []byte{b})
		if err != nil {
			return total, ioErr("write", -11, err)
		}
		total += n
		time.Sleep(interByteDelay)
	}
	return total, nil
}

func (a *unixAdapter) configureData(fd int, dataBits int, stopBits StopBits, parity Parity, baud int, customBaud int) error {
	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		return err
	}

	if baud == BaudCustom {
		settings.Cflag &^= unix.CSIZE
	} else {
		rate, ok := baudrateMap[baud]
		if !ok {
			return ioError("configure_data", -5)
		}
		var mask uint32
		for _, r := range baudrateMap {
			mask |= r
		}
		settings.Cflag &^= termiosMask(mask)
		settings.Cflag |= termiosMask(rate)
		settings.Ispeed = termiosMask(rate)
		settings.Ospeed = termiosMask(rate)
	}

	db, ok := databitsMap[dataBits]
	if !ok {
		return ioError("configure_data", -6)
	}
	settings.Cflag &^= unix.CSIZE
	settings.Cflag |= termiosMask(db)

	switch parity {
	case ParityNone:
		settings.Cflag &^= unix.PARENB | unix.PARODD
		settings.Iflag &^= unix.INPCK
	case ParityOdd:
		settings.Cflag |= unix.PARENB | unix.PARODD
		settings.Iflag |= unix.INPCK
	case ParityEven:
		settings.Cflag &^= unix.PARODD
		settings.Cflag |= unix.PARENB
		settings.Iflag |= unix.INPCK
	case ParityMark, ParitySpace:
		settings.Cflag |= unix.PARENB
		settings.Iflag |= unix.INPCK
	default:
		return ioError("configure_data", -7)
	}

	switch stopBits {
	case StopBits1:
		settings.Cflag &^= unix.CSTOPB
	case StopBits1P5, StopBits2:
		settings.Cflag |= unix.CSTOPB
	default:
		return ioError("configure_data", -8)
	}

	if err := unix.IoctlSetTermios(fd, ioctlTcsetattr, settings); err != nil {
		return err
	}

	if baud == BaudCustom {
		return a.setSpecialBaudrate(fd, uint32(customBaud))
	}
	return nil
}

func (a *unixAdapter) configureControl(fd int, flow FlowControl, xon, xoff byte, parityFrameCheck, overflowCheck bool) error {
	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		return err
	}

	settings.Iflag &^= unix.IXON | unix.IXOFF
	settings.Cflag &^= termiosMask(tcCRTSCTS)
	switch flow {
	case FlowNone:
	case FlowHardware:
		settings.Cflag |= termiosMask(tcCRTSCTS)
	case FlowSoftware:
		settings.Iflag |= unix.IXON | unix.IXOFF
		settings.Cc[unix.VSTART] = xon
		settings.Cc[unix.VSTOP] = xoff
	default:
		return newError(KindInvalidArg, "configure_control")
	}

	if parityFrameCheck {
		settings.Iflag |= unix.INPCK
	}
	if overflowCheck {
		settings.Iflag |= unix.IGNPAR
	}

	return unix.IoctlSetTermios(fd, ioctlTcsetattr, settings)
}

func (a *unixAdapter) currentConfiguration(fd int) ([]string, error) {
	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		return nil, err
	}
	return termiosFields(settings), nil
}

func (a *unixAdapter) setRTS(fd int, assert bool) error {
	return setModemBit(fd, unix.TIOCM_RTS, assert)
}

func (a *unixAdapter) setDTR(fd int, assert bool) error {
	return setModemBit(fd, unix.TIOCM_DTR, assert)
}

func setModemBit(fd int, bit int, assert bool) error {
	if assert {
		return unix.IoctlSetInt(fd, unix.TIOCMBIS, bit)
	}
	return unix.IoctlSetInt(fd, unix.TIOCMBIC, bit)
}

func (a *unixAdapter) lineStatus(fd int) (LineStatus, error) {
	bits, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return LineStatus{}, err
	}
	b := func(mask int) int {
		if bits&mask != 0 {
			return 1
		}
		return 0
	}
	return LineStatus{
		CTS:  b(unix.TIOCM_CTS),
		DSR:  b(unix.TIOCM_DSR),
		DCD:  b(unix.TIOCM_CD),
		RI:   b(unix.TIOCM_RI),
		LOOP: b(unix.TIOCM_LE),
		RTS:  b(unix.TIOCM_RTS),
		DTR:  b(unix.TIOCM_DTR),
	}, nil
}

func (a *unixAdapter) clearBuffers(fd int, rx, tx bool) error {
	var which int
	switch {
	case rx && tx:
		which = unix.TCIOFLUSH
	case rx:
		which = unix.TCIFLUSH
	case tx:
		which = unix.TCOFLUSH
	default:
		return nil
	}
	return unix.IoctlSetInt(fd, ioctlTcflsh, which)
}

func (a *unixAdapter) sendBreak(fd int, d time.Duration) error {
	_ = a.drainOutput(fd)
	if err := unix.IoctlSetInt(fd, ioctlTiocsbrk, 0); err != nil {
		return err
	}
	time.Sleep(d)
	return unix.IoctlSetInt(fd, ioctlTioccbrk, 0)
}

func (a *unixAdapter) bufferByteCounts(fd int) (rx, tx int, err error) {
	rxN, err := unix.IoctlGetInt(fd, ioctlFionread)
	if err != nil {
		return 0, 0, err
	}
	txN, err := unix.IoctlGetInt(fd, unix.TIOCOUTQ)
	if err != nil {
		return 0, 0, err
	}
	return rxN, txN, nil
}

func (a *unixAdapter) setMinDataLength(fd int, n int) error {
	settings, err := unix.IoctlGetTermios(fd, ioctlTcgetattr)
	if err != nil {
		return err
	}
	settings.Cc[unix.VMIN] = uint8(n)
	return unix.IoctlSetTermios(fd, ioctlTcsetattr, settings)
}

// listen delivers data by blocking on a cancelable read-readiness wait and
// line events by polling the modem-status bits on the same cadence,
// comparing against the previously observed bitmask.
func (a *unixAdapter) listen(fd int, stop <-chan struct{}, onData func([]byte), onEvent func(EventMask)) error {
	waiter, err := newCancelableWait()
	if err != nil {
		return err
	}
	defer waiter.close()

	go func() {
		<-stop
		waiter.interrupt()
	}()

	lastMask, _ := readModemMask(fd)
	buf := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		ready, cancel, err := waiter.waitReadable(fd, 200*time.Millisecond)
		if cancel {
			return nil
		}
		if err != nil {
			return err
		}
		if ready {
			n, err := unix.Read(fd, buf)
			if err == nil && n > 0 {
				onData(append([]byte(nil), buf[:n]...))
			}
		}

		mask, err := readModemMask(fd)
		if err == nil && mask != lastMask {
			onEvent(mask)
			lastMask = mask
		}
	}
}

func readModemMask(fd int) (EventMask, error) {
	bits, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return 0, err
	}
	var m EventMask
	if bits&unix.TIOCM_CTS != 0 {
		m |= MaskCTS
	}
	if bits&unix.TIOCM_DSR != 0 {
		m |= MaskDSR
	}
	if bits&unix.TIOCM_CD != 0 {
		m |= MaskDCD
	}
	if bits&unix.TIOCM_RI != 0 {
		m |= MaskRI
	}
	if bits&unix.TIOCM_LE != 0 {
		m |= MaskLOOP
	}
	if bits&unix.TIOCM_RTS != 0 {
		m |= MaskRTS
	}
	if bits&unix.TIOCM_DTR != 0 {
		m |= MaskDTR
	}
	return m, nil
}

func termiosMask(v uint32) uint32 { return v }

func ioErr(op string, code int, cause error) error {
	return &PortError{Kind: KindIOError, Op: op, Code: code, Err: cause}
}

func termiosFields(t *unix.Termios) []string {
	out := []string{
		strconv.Itoa(int(t.Iflag)), strconv.Itoa(int(t.Oflag)),
		strconv.Itoa(int(t.Cflag)), strconv.Itoa(int(t.Lflag)),
	}
	for _, c := range t.Cc {
		out = append(out, strconv.Itoa(int(c)))
	}
	out = append(out, strconv.Itoa(int(t.Ispeed)), strconv.Itoa(int(t.Ospeed)))
	return out
}
