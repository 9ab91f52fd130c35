//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serial

import (
	"strconv"
	"syscall"
	"time"
)

// windowsAdapter implements nativeAdapter on top of the Win32 COMM API
// (DCB/COMMTIMEOUTS), addressed through the hand-written proc bindings in
// syscall_windows.go.
type windowsAdapter struct{}

func newNativeAdapter() nativeAdapter {
	return &windowsAdapter{}
}

func nativeGetPortsList() ([]string, error) {
	subKey, err := syscall.UTF16PtrFromString(`HARDWARE\DEVICEMAP\SERIALCOMM\`)
	if err != nil {
		return nil, err
	}

	var h syscall.Handle
	if err := syscall.RegOpenKeyEx(syscall.HKEY_LOCAL_MACHINE, subKey, 0, syscall.KEY_READ, &h); err != nil {
		return nil, err
	}
	defer syscall.RegCloseKey(h)

	var valuesCount uint32
	if err := syscall.RegQueryInfoKey(h, nil, nil, nil, nil, nil, nil, &valuesCount, nil, nil, nil, nil); err != nil {
		return nil, err
	}

	list := make([]string, 0, valuesCount)
	for i := uint32(0); i < valuesCount; i++ {
		var data [1024]uint16
		dataSize := uint32(len(data))
		var name [1024]uint16
		nameSize := uint32(len(name))
		if err := regEnumValue(h, i, &name[0], &nameSize, &data[0], &dataSize); err != nil {
			return nil, err
		}
		list = append(list, syscall.UTF16ToString(data[:]))
	}
	return list, nil
}

func (a *windowsAdapter) open(portName string, enableRead, enableWrite, exclusive bool) (int, error) {
	path, err := syscall.UTF16PtrFromString(`\\.\` + portName)
	if err != nil {
		return 0, err
	}

	var access uint32
	if enableRead {
		access |= syscall.GENERIC_READ
	}
	if enableWrite {
		access |= syscall.GENERIC_WRITE
	}

	handle, err := syscall.CreateFile(path, access, 0, nil, syscall.OPEN_EXISTING, 0, 0)
	if err != nil {
		switch err {
		case syscall.ERROR_ACCESS_DENIED:
			return 0, ioError("open", -1)
		case syscall.ERROR_FILE_NOT_FOUND:
			return 0, ioError("open", -2)
		}
		return 0, err
	}

	params := &dcb{}
	if getCommState(handle, params) != nil {
		syscall.CloseHandle(handle)
		return 0, ioError("open", -3)
	}
	params.Flags &= dcbRTSControlDisableMask
	params.Flags |= dcbRTSControlEnable
	params.Flags &= dcbDTRControlDisableMask
	params.Flags |= dcbDTRControlEnable
	params.Flags &^= dcbOutXCTSFlow | dcbOutXDSRFlow | dcbDSRSensitivity
	params.Flags |= dcbTXContinueOnXOFF
	params.Flags &^= dcbInX | dcbOutX | dcbErrorChar | dcbNull | dcbAbortOnError
	params.XonLim = 2048
	params.XoffLim = 512
	params.XonChar = 17
	params.XoffChar = 19
	if setCommState(handle, params) != nil {
		syscall.CloseHandle(handle)
		return 0, ioError("open", -3)
	}

	// Short read timeouts turn each ReadFile into a bounded poll instead of
	// an indefinite block, so listen's stop channel is checked regularly.
	timeouts := &commTimeouts{
		ReadIntervalTimeout:         0xFFFFFFFF,
		ReadTotalTimeoutMultiplier:  0,
		ReadTotalTimeoutConstant:    200,
		WriteTotalTimeoutConstant:   0,
		WriteTotalTimeoutMultiplier: 0,
	}
	if setCommTimeouts(handle, timeouts) != nil {
		syscall.CloseHandle(handle)
		return 0, ioError("open", -3)
	}

	return int(handle), nil
}

func (a *windowsAdapter) close(fd int) error {
	return syscall.CloseHandle(syscall.Handle(fd))
}

func (a *windowsAdapter) read(fd int, buf []byte) (int, AdapterStatus, error) {
	var n uint32
	err := syscall.ReadFile(syscall.Handle(fd), buf, &n, nil)
	if err != nil {
		return 0, StatusErrorCode, ioErr("read", -12, err)
	}
	if n == 0 {
		return 0, StatusNoData, nil
	}
	return int(n), StatusData, nil
}

func (a *windowsAdapter) write(fd int, buf []byte, interByteDelay time.Duration) (int, error) {
	if interByteDelay <= 0 {
		var n uint32
		err := syscall.WriteFile(syscall.Handle(fd), buf, &n, nil)
		if err != nil {
			return int(n), ioErr("write", -11, err)
		}
		return int(n), nil
	}
	total := 0
	for _, b := range buf {
		var n uint32
		if err := syscall.WriteFile(syscall.Handle(fd), []byte{b}, &n, nil); err != nil {
			return total, ioErr("write", -11, err)
		}
		total += int(n)
		time.Sleep(interByteDelay)
	}
	return total, nil
}

func (a *windowsAdapter) configureData(fd int, dataBits int, stopBits StopBits, parity Parity, baud int, customBaud int) error {
	h := syscall.Handle(fd)
	params := &dcb{}
	if err := getCommState(h, params); err != nil {
		return err
	}

	if baud == BaudCustom {
		params.BaudRate = uint32(customBaud)
	} else {
		params.BaudRate = uint32(baud)
	}
	params.ByteSize = byte(dataBits)

	switch parity {
	case ParityNone:
		params.Parity = 0
	case ParityOdd:
		params.Parity = 1
	case ParityEven:
		params.Parity = 2
	case ParityMark:
		params.Parity = 3
	case ParitySpace:
		params.Parity = 4
	default:
		return ioError("configure_data", -7)
	}

	switch stopBits {
	case StopBits1:
		params.StopBits = 0
	case StopBits1P5:
		params.StopBits = 1
	case StopBits2:
		params.StopBits = 2
	default:
		return ioError("configure_data", -8)
	}

	return setCommState(h, params)
}

func (a *windowsAdapter) configureControl(fd int, flow FlowControl, xon, xoff byte, parityFrameCheck, overflowCheck bool) error {
	h := syscall.Handle(fd)
	params := &dcb{}
	if err := getCommState(h, params); err != nil {
		return err
	}

	params.Flags &^= dcbOutXCTSFlow | dcbOutXDSRFlow | dcbInX | dcbOutX
	switch flow {
	case FlowNone:
	case FlowHardware:
		params.Flags |= dcbOutXCTSFlow
		params.Flags &= dcbRTSControlDisableMask
		params.Flags |= dcbRTSControlHandshake
	case FlowSoftware:
		params.Flags |= dcbInX | dcbOutX
		params.XonChar = xon
		params.XoffChar = xoff
	default:
		return newError(KindInvalidArg, "configure_control")
	}

	if !parityFrameCheck {
		params.Flags &^= dcbParity
	} else {
		params.Flags |= dcbParity
	}
	_ = overflowCheck // Windows has no discrete overrun-ignore bit in DCB

	return setCommState(h, params)
}

func (a *windowsAdapter) currentConfiguration(fd int) ([]string, error) {
	params := &dcb{}
	if err := getCommState(syscall.Handle(fd), params); err != nil {
		return nil, err
	}
	return []string{
		strconv.FormatUint(uint64(params.BaudRate), 10), strconv.Itoa(int(params.ByteSize)),
		strconv.Itoa(int(params.Parity)), strconv.Itoa(int(params.StopBits)),
		strconv.FormatUint(uint64(params.Flags), 10),
	}, nil
}

func (a *windowsAdapter) setRTS(fd int, assert bool) error {
	fn := uint32(commFunctionClrRTS)
	if assert {
		fn = commFunctionSetRTS
	}
	return escapeCommFunction(syscall.Handle(fd), fn)
}

func (a *windowsAdapter) setDTR(fd int, assert bool) error {
	fn := uint32(commFunctionClrDTR)
	if assert {
		fn = commFunctionSetDTR
	}
	return escapeCommFunction(syscall.Handle(fd), fn)
}

func (a *windowsAdapter) lineStatus(fd int) (LineStatus, error) {
	bits, err := getCommModemStatus(syscall.Handle(fd))
	if err != nil {
		return LineStatus{}, err
	}
	b := func(mask uint32) int {
		if bits&mask != 0 {
			return 1
		}
		return 0
	}
	return LineStatus{
		CTS: b(msCTSOn), DSR: b(msDSROn), DCD: b(msRLSDOn), RI: b(msRingOn),
	}, nil
}

// interruptCounts has no Windows COMM API equivalent of Linux's
// TIOCGICOUNT; every field reports zero.
func (a *windowsAdapter) interruptCounts(fd int) (InterruptCounts, error) {
	return InterruptCounts{}, nil
}

func (a *windowsAdapter) clearBuffers(fd int, rx, tx bool) error {
	var flags uint32
	if rx {
		flags |= purgeRxClear | purgeRxAbort
	}
	if tx {
		flags |= purgeTxClear | purgeTxAbort
	}
	if flags == 0 {
		return nil
	}
	return purgeComm(syscall.Handle(fd), flags)
}

func (a *windowsAdapter) sendBreak(fd int, d time.Duration) error {
	h := syscall.Handle(fd)
	if err := escapeCommFunction(h, commFunctionSetBreak); err != nil {
		return err
	}
	time.Sleep(d)
	return escapeCommFunction(h, commFunctionClrBreak)
}

func (a *windowsAdapter) bufferByteCounts(fd int) (rx, tx int, err error) {
	var errs uint32
	var stat comstat
	if err := clearCommError(syscall.Handle(fd), &errs, &stat); err != nil {
		return 0, 0, err
	}
	return int(stat.inque), int(stat.outque), nil
}

// setMinDataLength has no Windows analogue to termios VMIN: COMMTIMEOUTS
// already governs how ReadFile blocks, so this is a deliberate no-op.
func (a *windowsAdapter) setMinDataLength(fd int, n int) error {
	return nil
}

// listen relies on the short ReadTotalTimeoutConstant configured in open:
// each ReadFile call returns within ~200ms even with no data, so the loop
// can check stop on the same cadence without a native wait/event object.
func (a *windowsAdapter) listen(fd int, stop <-chan struct{}, onData func([]byte), onEvent func(EventMask)) error {
	h := syscall.Handle(fd)
	lastMask, _ := a.lineStatus(fd)
	buf := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		var n uint32
		if err := syscall.ReadFile(h, buf, &n, nil); err != nil {
			return ioErr("listen", -12, err)
		}
		if n > 0 {
			onData(append([]byte(nil), buf[:n]...))
		}

		mask, err := a.lineStatus(fd)
		if err == nil && mask != lastMask {
			onEvent(lineStatusToMask(mask))
			lastMask = mask
		}
	}
}

func lineStatusToMask(s LineStatus) EventMask {
	var m EventMask
	if s.CTS != 0 {
		m |= MaskCTS
	}
	if s.DSR != 0 {
		m |= MaskDSR
	}
	if s.DCD != 0 {
		m |= MaskDCD
	}
	if s.RI != 0 {
		m |= MaskRI
	}
	return m
}
