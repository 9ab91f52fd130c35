//go:build windows

//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"regexp"
	"strings"
	"syscall"
	"unsafe"
)

var (
	modsetupapi = syscall.NewLazyDLL("setupapi.dll")

	procSetupDiGetClassDevsW              = modsetupapi.NewProc("SetupDiGetClassDevsW")
	procSetupDiEnumDeviceInfo             = modsetupapi.NewProc("SetupDiEnumDeviceInfo")
	procSetupDiGetDeviceInstanceIdW       = modsetupapi.NewProc("SetupDiGetDeviceInstanceIdW")
	procSetupDiGetDeviceRegistryPropertyW = modsetupapi.NewProc("SetupDiGetDeviceRegistryPropertyW")
	procSetupDiDestroyDeviceInfoList      = modsetupapi.NewProc("SetupDiDestroyDeviceInfoList")
)

// guidDevClassPorts is GUID_DEVCLASS_PORTS, the device setup class every
// COM port (serial or USB-CDC) enumerates under.
var guidDevClassPorts = guid{
	Data1: 0x4d36e978,
	Data2: 0xe325,
	Data3: 0x11ce,
	Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18},
}

type guid struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

type spDevinfoData struct {
	cbSize    uint32
	classGUID guid
	devInst   uint32
	reserved  uintptr
}

const (
	digcfPresent     = 0x00000002
	spdrpFriendlyName = 0x0000000C
	errorNoMoreItems  = 259
	invalidHandle     = ^uintptr(0)
)

// nativeGetDetailedPortsList walks the Ports device setup class via
// SetupAPI, the same registry-backed device tree Device Manager reads,
// pulling the friendly name (which embeds the assigned COMn) and the
// instance ID (which embeds VID/PID/serial for USB-backed ports) for each
// entry.
func nativeGetDetailedPortsList() ([]*PortDetails, error) {
	h, _, _ := procSetupDiGetClassDevsW.Call(
		uintptr(unsafe.Pointer(&guidDevClassPorts)),
		0, 0, uintptr(digcfPresent))
	if h == invalidHandle {
		return nil, PortEnumerationError{}
	}
	defer procSetupDiDestroyDeviceInfoList.Call(h)

	var list []*PortDetails
	for i := uint32(0); ; i++ {
		data := spDevinfoData{cbSize: uint32(unsafe.Sizeof(spDevinfoData{}))}
		ok, _, errno := procSetupDiEnumDeviceInfo.Call(h, uintptr(i), uintptr(unsafe.Pointer(&data)))
		if ok == 0 {
			if errno == errorNoMoreItems {
				break
			}
			break
		}

		friendly := getStringProperty(h, &data, spdrpFriendlyName)
		name := extractComName(friendly)
		if name == "" {
			continue
		}

		instanceID := getInstanceID(h, &data)
		res := &PortDetails{Name: name, Product: friendly}
		parseDeviceID(instanceID, res)
		list = append(list, res)
	}
	return list, nil
}

func getStringProperty(h uintptr, data *spDevinfoData, property uint32) string {
	var buf [512]uint16
	var size uint32
	ok, _, _ := procSetupDiGetDeviceRegistryPropertyW.Call(
		h, uintptr(unsafe.Pointer(data)), uintptr(property), 0,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)*2), uintptr(unsafe.Pointer(&size)))
	if ok == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:])
}

func getInstanceID(h uintptr, data *spDevinfoData) string {
	var buf [512]uint16
	var size uint32
	ok, _, _ := procSetupDiGetDeviceInstanceIdW.Call(
		h, uintptr(unsafe.Pointer(data)),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), uintptr(unsafe.Pointer(&size)))
	if ok == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:])
}

var comNameRe = regexp.MustCompile(`\((COM\d+)\)`)

func extractComName(friendlyName string) string {
	m := comNameRe.FindStringSubmatch(friendlyName)
	if m == nil {
		return ""
	}
	return m[1]
}

var vidPidRe = regexp.MustCompile(`(?i)VID_([0-9A-F]{4})[&+]PID_([0-9A-F]{4})`)

// parseDeviceID extracts VID/PID/serial number from a Windows hardware
// instance ID such as "USB\VID_2341&PID_0043\85735313838351518281" or,
// for FTDI's own bus enumerator, "FTDIBUS\VID_0403+PID_6001+A6004CCFA\0000".
// A trailing path segment that still contains '&' is a Windows-generated
// instance suffix, not a device serial number, and is reported as empty.
func parseDeviceID(deviceID string, res *PortDetails) {
	parts := strings.Split(deviceID, `\`)
	if len(parts) < 2 {
		res.IsUSB = false
		return
	}
	middle := parts[1]
	m := vidPidRe.FindStringSubmatch(middle)
	if m == nil {
		res.IsUSB = false
		return
	}

	res.IsUSB = true
	res.VID = strings.ToUpper(m[1])
	res.PID = strings.ToUpper(m[2])

	if strings.Contains(middle, "+") {
		fields := strings.Split(middle, "+")
		if len(fields) >= 3 {
			res.SerialNumber = fields[2]
		}
		return
	}

	last := parts[len(parts)-1]
	if strings.Contains(last, "&") {
		res.SerialNumber = ""
		return
	}
	res.SerialNumber = last
}
