//go:build linux

package enumerator

import (
	"os"
	"path/filepath"
	"strings"
)

// nativeGetDetailedPortsList walks /sys/class/tty, following each tty's
// device symlink up to the first ancestor that exposes idVendor/idProduct
// (the usb-serial interface node), matching what udev does to populate
// ID_VENDOR_ID/ID_MODEL_ID for tty devices.
func nativeGetDetailedPortsList() ([]*PortDetails, error) {
	entries, err := os.ReadDir("/sys/class/tty")
	if err != nil {
		return nil, &PortEnumerationError{causedBy: err}
	}

	var ports []*PortDetails
	for _, e := range entries {
		devDir := filepath.Join("/sys/class/tty", e.Name(), "device")
		target, err := filepath.EvalSymlinks(devDir)
		if err != nil {
			continue
		}

		port := &PortDetails{Name: "/dev/" + e.Name()}
		if vid, pid, serial, ok := findUSBAncestor(target); ok {
			port.IsUSB = true
			port.VID = vid
			port.PID = pid
			port.SerialNumber = serial
		}
		ports = append(ports, port)
	}
	return ports, nil
}

func findUSBAncestor(dir string) (vid, pid, serial string, ok bool) {
	for d := dir; d != "/" && d != "."; d = filepath.Dir(d) {
		vidPath := filepath.Join(d, "idVendor")
		if _, err := os.Stat(vidPath); err != nil {
			continue
		}
		v := readSysTrimmed(vidPath)
		p := readSysTrimmed(filepath.Join(d, "idProduct"))
		s := readSysTrimmed(filepath.Join(d, "serial"))
		return strings.ToUpper(v), strings.ToUpper(p), s, true
	}
	return "", "", "", false
}

func readSysTrimmed(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
