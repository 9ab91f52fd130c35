//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serial

import (
	"syscall"
	"unsafe"
)

var (
	modadvapi32 = syscall.NewLazyDLL("advapi32.dll")
	modkernel32 = syscall.NewLazyDLL("kernel32.dll")

	procRegEnumValueW      = modadvapi32.NewProc("RegEnumValueW")
	procGetCommState       = modkernel32.NewProc("GetCommState")
	procSetCommState       = modkernel32.NewProc("SetCommState")
	procSetCommTimeouts    = modkernel32.NewProc("SetCommTimeouts")
	procClearCommError     = modkernel32.NewProc("ClearCommError")
	procEscapeCommFunction = modkernel32.NewProc("EscapeCommFunction")
	procGetCommModemStatus = modkernel32.NewProc("GetCommModemStatus")
	procPurgeComm          = modkernel32.NewProc("PurgeComm")
)

func regEnumValue(key syscall.Handle, index uint32, name *uint16, nameLen *uint32, data *uint16, dataLen *uint32) error {
	r1, _, _ := procRegEnumValueW.Call(
		uintptr(key), uintptr(index),
		uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(nameLen)),
		0, 0,
		uintptr(unsafe.Pointer(data)), uintptr(unsafe.Pointer(dataLen)),
	)
	if r1 != 0 {
		return syscall.Errno(r1)
	}
	return nil
}

const (
	dcbBinary                uint32 = 0x00000001
	dcbParity                       = 0x00000002
	dcbOutXCTSFlow                  = 0x00000004
	dcbOutXDSRFlow                  = 0x00000008
	dcbDTRControlDisableMask        = ^uint32(0x00000030)
	dcbDTRControlEnable             = 0x00000010
	dcbDTRControlHandshake          = 0x00000020
	dcbDSRSensitivity               = 0x00000040
	dcbTXContinueOnXOFF             = 0x00000080
	dcbOutX                         = 0x00000100
	dcbInX                          = 0x00000200
	dcbErrorChar                    = 0x00000400
	dcbNull                         = 0x00000800
	dcbRTSControlDisableMask        = ^uint32(0x00003000)
	dcbRTSControlEnable             = 0x00001000
	dcbRTSControlHandshake          = 0x00002000
	dcbRTSControlToggle             = 0x00003000
	dcbAbortOnError                 = 0x00004000
)

// dcb mirrors the Win32 DCB structure (see SetCommState on MSDN). Flags is
// a packed bitfield; the dcb* constants above mask/set individual bits.
type dcb struct {
	DCBlength uint32
	BaudRate  uint32
	Flags     uint32

	wReserved  uint16
	XonLim     uint16
	XoffLim    uint16
	ByteSize   byte
	Parity     byte
	StopBits   byte
	XonChar    byte
	XoffChar   byte
	ErrorChar  byte
	EOFChar    byte
	EvtChar    byte
	wReserved1 uint16
}

func getCommState(handle syscall.Handle, d *dcb) error {
	r1, _, err := procGetCommState.Call(uintptr(handle), uintptr(unsafe.Pointer(d)))
	if r1 == 0 {
		return err
	}
	return nil
}

func setCommState(handle syscall.Handle, d *dcb) error {
	r1, _, err := procSetCommState.Call(uintptr(handle), uintptr(unsafe.Pointer(d)))
	if r1 == 0 {
		return err
	}
	return nil
}

type commTimeouts struct {
	ReadIntervalTimeout         uint32
	ReadTotalTimeoutMultiplier  uint32
	ReadTotalTimeoutConstant    uint32
	WriteTotalTimeoutMultiplier uint32
	WriteTotalTimeoutConstant   uint32
}

func setCommTimeouts(handle syscall.Handle, t *commTimeouts) error {
	r1, _, err := procSetCommTimeouts.Call(uintptr(handle), uintptr(unsafe.Pointer(t)))
	if r1 == 0 {
		return err
	}
	return nil
}

type comstat struct {
	flags  uint32
	inque  uint32
	outque uint32
}

func clearCommError(handle syscall.Handle, errs *uint32, stat *comstat) error {
	r1, _, err := procClearCommError.Call(uintptr(handle), uintptr(unsafe.Pointer(errs)), uintptr(unsafe.Pointer(stat)))
	if r1 == 0 {
		return err
	}
	return nil
}

const (
	commFunctionSetXOFF  = 1
	commFunctionSetXON   = 2
	commFunctionSetRTS   = 3
	commFunctionClrRTS   = 4
	commFunctionSetDTR   = 5
	commFunctionClrDTR   = 6
	commFunctionSetBreak = 8
	commFunctionClrBreak = 9
)

func escapeCommFunction(handle syscall.Handle, function uint32) error {
	r1, _, err := procEscapeCommFunction.Call(uintptr(handle), uintptr(function))
	if r1 == 0 {
		return err
	}
	return nil
}

const (
	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080
)

func getCommModemStatus(handle syscall.Handle) (uint32, error) {
	var bits uint32
	r1, _, err := procGetCommModemStatus.Call(uintptr(handle), uintptr(unsafe.Pointer(&bits)))
	if r1 == 0 {
		return 0, err
	}
	return bits, nil
}

const (
	purgeRxAbort uint32 = 0x0002
	purgeRxClear        = 0x0008
	purgeTxAbort        = 0x0001
	purgeTxClear        = 0x0004
)

func purgeComm(handle syscall.Handle, flags uint32) error {
	r1, _, err := procPurgeComm.Call(uintptr(handle), uintptr(flags))
	if r1 == 0 {
		return err
	}
	return nil
}
