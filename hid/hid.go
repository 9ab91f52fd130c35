// Package hid provides the minimal USB HID sibling of the serial package:
// many USB-serial adapters expose a companion HID interface (CDC control
// lines, vendor reports) that isn't reachable through a tty/COM node. It
// reuses the same report-oriented shape the enumerator package already
// uses for VID/PID addressing, but keeps its own handle space — HID
// devices are not UART handles and the serial Manager's exclusive-open
// registry does not apply to them.
package hid

import "time"

// Device represents an opened HID device capable of report I/O. Output and
// input reports go through the device's normal read/write path; feature
// reports are a distinct, addressable-by-ID request/response pair most HID
// transports expose via a control channel rather than the data pipe.
type Device interface {
	WriteOutputReport(reportID byte, data []byte) error
	ReadInputReport() ([]byte, error)
	ReadInputReportWithTimeout(timeout time.Duration) ([]byte, error)
	WriteFeatureReport(reportID byte, data []byte) error
	ReadFeatureReport(reportID byte) ([]byte, error)
	Close() error
}

// Info describes one enumerated HID device.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Product      string
	Manufacturer string
}

// Manager enumerates and opens HID devices.
type Manager interface {
	List() ([]Info, error)
	Open(info Info) (Device, error)
	OpenVIDPID(vendorID, productID uint16) (Device, error)
}

// NewManager returns the OS-specific HID manager.
func NewManager() (Manager, error) {
	return newManager()
}

// OpenByVIDPID is a package-level convenience that constructs the default
// platform Manager and opens the first device matching vendorID/productID,
// for callers that don't need to hold onto the Manager itself.
func OpenByVIDPID(vendorID, productID uint16) (Device, error) {
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	return m.OpenVIDPID(vendorID, productID)
}
