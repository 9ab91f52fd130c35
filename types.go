package serial

import (
	"runtime"
	"strings"
)

// Handle identifies one opened OS serial resource. Negative values encode
// errors and must never be stored in the registry.
type Handle int

// DuplicateExclusive is the sentinel Handle returned by Manager.Open when an
// exclusive open is attempted for a port name this process already has open.
const DuplicateExclusive Handle = -1

// ListenerToken is an opaque identifier returned at listener registration
// time and used by Unregister*/Pause/Resume/SetEventMask to find the
// looper that serves a given listener, sidestepping Go's lack of an
// object-identity operator for closures.
type ListenerToken uint64

// Baud rate wire values. BaudCustom signals the adapter to use the
// caller-supplied custom baud rate instead of one of the enumerated rates.
const (
	Baud50     = 50
	Baud75     = 75
	Baud110    = 110
	Baud134    = 134
	Baud150    = 150
	Baud200    = 200
	Baud300    = 300
	Baud600    = 600
	Baud1200   = 1200
	Baud1800   = 1800
	Baud2400   = 2400
	Baud4800   = 4800
	Baud9600   = 9600
	Baud19200  = 19200
	Baud38400  = 38400
	Baud57600  = 57600
	Baud115200 = 115200
	Baud230400 = 230400
	Baud460800 = 460800
	Baud921600 = 921600
	// BaudCustom is the sentinel that tells the adapter to honor the
	// explicit custom baud rate parameter instead of this enumeration.
	BaudCustom = 251
)

// DataBits width in bits. Only these four values are accepted.
const (
	DataBits5 = 5
	DataBits6 = 6
	DataBits7 = 7
	DataBits8 = 8
)

// StopBits wire values; note StopBits1P5 deliberately encodes to 4, not 3,
// matching the historical wire format this library preserves.
type StopBits int

const (
	StopBits1   StopBits = 1
	StopBits1P5 StopBits = 4
	StopBits2   StopBits = 2
)

// Parity wire values.
type Parity int

const (
	ParityNone  Parity = 1
	ParityOdd   Parity = 2
	ParityEven  Parity = 3
	ParityMark  Parity = 4
	ParitySpace Parity = 5
)

// FlowControl wire values.
type FlowControl int

const (
	FlowNone     FlowControl = 1
	FlowHardware FlowControl = 2
	FlowSoftware FlowControl = 3
)

// Endian selects the byte order used by WriteInt/WriteIntArray.
// EndianDefault behaves like EndianBig.
type Endian int

const (
	EndianLittle  Endian = 1
	EndianBig     Endian = 2
	EndianDefault Endian = 3
)

// FileTransferProtocol identifies the protocol used by SendFile/ReceiveFile.
type FileTransferProtocol int

// XMODEM is the only file-transfer protocol currently wired to the Manager.
const XMODEM FileTransferProtocol = 1

// EventMask is a bitset over the modem-line conditions delivered to
// registered line-event listeners. It defines no error-condition bits.
type EventMask uint32

const (
	MaskCTS  EventMask = 0x01
	MaskDSR  EventMask = 0x02
	MaskDCD  EventMask = 0x04
	MaskRI   EventMask = 0x08
	MaskLOOP EventMask = 0x10
	MaskRTS  EventMask = 0x20
	MaskDTR  EventMask = 0x40
)

// PortMonitorEvent identifies an add/remove hotplug notification.
type PortMonitorEvent int

const (
	PortAdded   PortMonitorEvent = 1
	PortRemoved PortMonitorEvent = 2
)

// PlatformID identifies the host OS family, matching the wire values this
// library has always exposed through OSType.
type PlatformID int

const (
	PlatformLinux   PlatformID = 1
	PlatformWindows PlatformID = 2
	PlatformSolaris PlatformID = 3
	PlatformMacOSX  PlatformID = 4
)

var currentPlatform = detectPlatform(runtime.GOOS)

func detectPlatform(goos string) PlatformID {
	g := strings.ToLower(goos)
	switch {
	case strings.Contains(g, "linux"):
		return PlatformLinux
	case strings.Contains(g, "windows"):
		return PlatformWindows
	case strings.Contains(g, "solaris"), strings.Contains(g, "sunos"):
		return PlatformSolaris
	case strings.Contains(g, "mac os"), strings.Contains(g, "macos"), strings.Contains(g, "darwin"):
		return PlatformMacOSX
	default:
		return 0
	}
}

// OSType returns the platform identifier captured once at process start.
func OSType() PlatformID {
	return currentPlatform
}

// DefaultReadByteCount is the number of bytes ReadBytes requests when the
// caller does not specify a count.
const DefaultReadByteCount = 1024

// AdapterStatus is the auxiliary status a nativeAdapter.read call reports
// alongside (or instead of) a byte count.
type AdapterStatus int

const (
	StatusData      AdapterStatus = iota // bytes were read, see returned slice
	StatusNoData                         // no data currently available, non-blocking
	StatusEOF                            // endpoint closed or device removed
	StatusErrorCode                      // a negative adapter error code was returned
)

// LineStatus is the fixed-order modem-line vector returned by LineStatus.
type LineStatus struct {
	CTS, DSR, DCD, RI, LOOP, RTS, DTR int
}

// Slice returns the (CTS, DSR, DCD, RI, LOOP, RTS, DTR) vector in the order
// documented by the Manager Façade.
func (s LineStatus) Slice() [7]int {
	return [7]int{s.CTS, s.DSR, s.DCD, s.RI, s.LOOP, s.RTS, s.DTR}
}

// InterruptCounts is the fixed-order vector returned by InterruptCounts.
// Only Linux populates non-zero values; other platforms report all-zero.
type InterruptCounts struct {
	CTS, DSR, Ring, DCD                     int
	RxBytes, TxBytes                        int
	FrameErrors, Overruns, ParityErrors     int
	Breaks, BufferOverruns                  int
}

// Slice returns the fixed 11-element vector documented on the Manager
// Façade: (CTS, DSR, RING, DCD, RX-buf, TX-buf, frame-err, overrun, parity, break, buffer-overrun).
func (c InterruptCounts) Slice() [11]int {
	return [11]int{
		c.CTS, c.DSR, c.Ring, c.DCD,
		c.RxBytes, c.TxBytes,
		c.FrameErrors, c.Overruns, c.ParityErrors,
		c.Breaks, c.BufferOverruns,
	}
}

// PortDetails carries USB metadata about an enumerated port. It mirrors
// enumerator.PortDetails as a value type of this package; listDetailedPorts
// in manager.go fills it from enumerator.GetDetailedPortsList.
type PortDetails struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}
