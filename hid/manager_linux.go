//go:build linux

package hid

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxManager enumerates /sys/class/hidraw, the same sysfs convention
// usb_linux.go in the enumerator package uses for tty devices.
type linuxManager struct{}

func newManager() (Manager, error) {
	return &linuxManager{}, nil
}

func (m *linuxManager) List() ([]Info, error) {
	entries, err := os.ReadDir("/sys/class/hidraw")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var infos []Info
	for _, e := range entries {
		base := filepath.Join("/sys/class/hidraw", e.Name(), "device")
		info := Info{Path: "/dev/" + e.Name()}
		if vid, pid, ok := parseHidUevent(base); ok {
			info.VendorID = vid
			info.ProductID = pid
		}
		info.Product = readFirstLine(filepath.Join(base, "uevent"))
		infos = append(infos, info)
	}
	return infos, nil
}

// parseHidUevent reads the HID_ID=bus:vendor:product line from the
// hidraw device's uevent file.
func parseHidUevent(deviceDir string) (vid, pid uint16, ok bool) {
	b, err := os.ReadFile(filepath.Join(deviceDir, "uevent"))
	if err != nil {
		return 0, 0, false
	}
	for _, line := range strings.Split(string(b), "\n") {
		if !strings.HasPrefix(line, "HID_ID=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(line, "HID_ID="), ":")
		if len(parts) != 3 {
			continue
		}
		v, err1 := strconv.ParseUint(parts[1], 16, 16)
		p, err2 := strconv.ParseUint(parts[2], 16, 16)
		if err1 != nil || err2 != nil {
			continue
		}
		return uint16(v), uint16(p), true
	}
	return 0, 0, false
}

func readFirstLine(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if i := strings.IndexByte(string(b), '\n'); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func (m *linuxManager) Open(info Info) (Device, error) {
	f, err := os.OpenFile(info.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &hidrawDevice{f: f}, nil
}

func (m *linuxManager) OpenVIDPID(vendorID, productID uint16) (Device, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.VendorID == vendorID && info.ProductID == productID {
			return m.Open(info)
		}
	}
	return nil, errors.New("hid: no device matches vid/pid")
}

// hidrawDevice implements Device directly on a Linux hidraw character
// device. Output and input reports travel over the device node's ordinary
// write/read path with the report ID as the leading byte, per the hidraw
// ABI (linux/hidraw.h); feature reports have no such data-pipe framing and
// go through the HIDIOCSFEATURE/HIDIOCGFEATURE ioctls instead.
type hidrawDevice struct {
	f *os.File
}

const maxReportSize = 4096

func (d *hidrawDevice) WriteOutputReport(reportID byte, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reportID)
	buf = append(buf, data...)
	_, err := d.f.Write(buf)
	return err
}

func (d *hidrawDevice) ReadInputReport() ([]byte, error) {
	buf := make([]byte, maxReportSize)
	n, err := d.f.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (d *hidrawDevice) ReadInputReportWithTimeout(timeout time.Duration) ([]byte, error) {
	if err := d.f.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	defer d.f.SetReadDeadline(time.Time{})
	return d.ReadInputReport()
}

func (d *hidrawDevice) WriteFeatureReport(reportID byte, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reportID)
	buf = append(buf, data...)
	req := hidiocSFeature(len(buf))
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *hidrawDevice) ReadFeatureReport(reportID byte) ([]byte, error) {
	buf := make([]byte, maxReportSize)
	buf[0] = reportID
	req := hidiocGFeature(len(buf))
	n, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return nil, errno
	}
	return buf[:n], nil
}

func (d *hidrawDevice) Close() error { return d.f.Close() }

// The hidraw feature-report ioctls are variable-length: the request number
// itself encodes the buffer size, per the kernel's _IOC encoding
// (include/uapi/asm-generic/ioctl.h: dir<<30 | size<<16 | type<<8 | nr).
const (
	iocWrite     = 1
	iocRead      = 2
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	hidIocType     = 'H'
	hidIocSFeature = 0x06
	hidIocGFeature = 0x07
)

func hidiocSFeature(len int) uintptr {
	return uintptr((iocWrite|iocRead)<<iocDirShift | hidIocType<<iocTypeShift | hidIocSFeature | len<<iocSizeShift)
}

func hidiocGFeature(len int) uintptr {
	return uintptr((iocWrite|iocRead)<<iocDirShift | hidIocType<<iocTypeShift | hidIocGFeature | len<<iocSizeShift)
}
