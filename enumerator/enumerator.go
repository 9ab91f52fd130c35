//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import "time"

// PortDetails contains detailed information about a USB serial port. Use
// GetDetailedPortsList to retrieve it.
type PortDetails struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string

	// Product is an OS-dependent string that describes the serial port, it
	// may not always be available and may differ across OS.
	Product string
}

// GetDetailedPortsList retrieves port details like USB VID/PID. Backends
// exist for Linux (sysfs), macOS (IOKit via cgo) and Windows (SetupAPI);
// the package has no implementation for other platforms.
func GetDetailedPortsList() ([]*PortDetails, error) {
	return nativeGetDetailedPortsList()
}

// LivePortsList is GetDetailedPortsList narrowed to ports that respond to
// a non-blocking readiness probe right now, filtering out device nodes a
// driver left behind without cleaning up.
func LivePortsList(probeTimeout time.Duration) ([]*PortDetails, error) {
	all, err := GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	byName := make(map[string]*PortDetails, len(all))
	for i, p := range all {
		names[i] = p.Name
		byName[p.Name] = p
	}

	live := ProbeReadable(names, probeTimeout)
	out := make([]*PortDetails, 0, len(live))
	for _, name := range live {
		out = append(out, byName[name])
	}
	return out, nil
}

// PortEnumerationError is the error type for serial ports enumeration
type PortEnumerationError struct {
	causedBy error
}

// Error returns the complete error code with details on the cause of the error
func (e PortEnumerationError) Error() string {
	reason := "Error while enumerating serial ports"
	if e.causedBy != nil {
		reason += ": " + e.causedBy.Error()
	}
	return reason
}
