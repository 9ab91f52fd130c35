package hid

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	written bytes.Buffer
	toRead  []byte
	feature map[byte][]byte
	closed  bool
}

func (d *fakeDevice) WriteOutputReport(reportID byte, data []byte) error {
	d.written.WriteByte(reportID)
	d.written.Write(data)
	return nil
}

func (d *fakeDevice) ReadInputReport() ([]byte, error) {
	if len(d.toRead) == 0 {
		return nil, errors.New("hid: no data")
	}
	n := len(d.toRead)
	if n > 8 {
		n = 8
	}
	report := d.toRead[:n]
	d.toRead = d.toRead[n:]
	return report, nil
}

func (d *fakeDevice) ReadInputReportWithTimeout(timeout time.Duration) ([]byte, error) {
	return d.ReadInputReport()
}

func (d *fakeDevice) WriteFeatureReport(reportID byte, data []byte) error {
	if d.feature == nil {
		d.feature = map[byte][]byte{}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	d.feature[reportID] = cp
	return nil
}

func (d *fakeDevice) ReadFeatureReport(reportID byte) ([]byte, error) {
	data, ok := d.feature[reportID]
	if !ok {
		return nil, errors.New("hid: no feature report for id")
	}
	return data, nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeManager struct {
	devices []Info
	opened  map[string]*fakeDevice
}

func newFakeManager(infos ...Info) *fakeManager {
	return &fakeManager{devices: infos, opened: map[string]*fakeDevice{}}
}

func (m *fakeManager) List() ([]Info, error) { return m.devices, nil }

func (m *fakeManager) Open(info Info) (Device, error) {
	d := &fakeDevice{}
	m.opened[info.Path] = d
	return d, nil
}

func (m *fakeManager) OpenVIDPID(vendorID, productID uint16) (Device, error) {
	for _, info := range m.devices {
		if info.VendorID == vendorID && info.ProductID == productID {
			return m.Open(info)
		}
	}
	return nil, errors.New("hid: no device matches vid/pid")
}

func TestManagerListReturnsRegisteredDevices(t *testing.T) {
	m := newFakeManager(
		Info{Path: "/dev/hidraw0", VendorID: 0x2341, ProductID: 0x0043, Product: "Uno"},
		Info{Path: "/dev/hidraw1", VendorID: 0x1a86, ProductID: 0x7523, Product: "CH340"},
	)

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "Uno", infos[0].Product)
}

func TestOpenVIDPIDFindsMatchingDevice(t *testing.T) {
	m := newFakeManager(Info{Path: "/dev/hidraw0", VendorID: 0x2341, ProductID: 0x0043})

	dev, err := m.OpenVIDPID(0x2341, 0x0043)
	require.NoError(t, err)
	require.NotNil(t, dev)

	require.NoError(t, dev.WriteOutputReport(0x01, []byte{0x02}))
	require.NoError(t, dev.Close())
}

func TestOpenVIDPIDNoMatchReturnsError(t *testing.T) {
	m := newFakeManager(Info{Path: "/dev/hidraw0", VendorID: 0x2341, ProductID: 0x0043})

	_, err := m.OpenVIDPID(0xffff, 0xffff)
	require.Error(t, err)
}

func TestDeviceReadInputReportDrainsBufferedBytes(t *testing.T) {
	d := &fakeDevice{toRead: []byte{1, 2, 3}}

	report, err := d.ReadInputReport()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, report)

	_, err = d.ReadInputReport()
	require.Error(t, err)
}

func TestDeviceReadInputReportWithTimeoutSharesPath(t *testing.T) {
	d := &fakeDevice{toRead: []byte{9}}

	report, err := d.ReadInputReportWithTimeout(10 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, report)
}

func TestDeviceFeatureReportRoundTrip(t *testing.T) {
	d := &fakeDevice{}

	require.NoError(t, d.WriteFeatureReport(0x05, []byte{0xaa, 0xbb}))
	got, err := d.ReadFeatureReport(0x05)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0xbb}, got)

	_, err = d.ReadFeatureReport(0x06)
	require.Error(t, err)
}
