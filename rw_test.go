package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestHandle(t *testing.T, adapter *fakeAdapter) (*Manager, Handle) {
	t.Helper()
	m := newTestManager(adapter)
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)
	return m, h
}

func TestWriteBytesRejectsEmptyBuffer(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	ok, err := m.WriteBytes(h, nil, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWriteBytesSucceeds(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	ok, err := m.WriteBytes(h, []byte("hello"), 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWriteStringAndSingleByte(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	ok, err := m.WriteString(h, "abc", 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.WriteSingleByte(h, 'x', 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWriteIntWidths(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())

	ok, err := m.WriteInt(h, 0x1234, 0, EndianBig, 2)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.WriteInt(h, 0x1234, 0, EndianLittle, 4)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.WriteInt(h, 1, 0, EndianBig, 3)
	require.Error(t, err)
}

func TestWriteIntArray(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	ok, err := m.WriteIntArray(h, []int64{1, 2, 3}, 0, EndianBig, 2)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReadBytesNoDataReturnsEmptyNotError(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	res, err := m.ReadBytes(h, 0)
	require.NoError(t, err)
	require.False(t, res.EOF)
	require.Empty(t, res.Data)
}

func TestReadStringPropagatesEOF(t *testing.T) {
	adapter := newFakeAdapter()
	m, h := openTestHandle(t, adapter)

	// swap in an adapter whose read reports EOF for every fd by
	// wrapping the adapter's read behavior via a tiny closure adapter.
	eofAdapter := &eofOnceAdapter{fakeAdapter: adapter}
	m.adapter = eofAdapter

	s, eof, err := m.ReadString(h, 16)
	require.NoError(t, err)
	require.True(t, eof)
	require.Empty(t, s)
}

func TestReadSingleByte(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	res, err := m.ReadSingleByte(h)
	require.NoError(t, err)
	require.False(t, res.EOF)
}

func TestSetMinDataLengthRejectsNegative(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	err := m.SetMinDataLength(h, -1)
	require.Error(t, err)
}

func TestSetMinDataLengthAcceptsNonNegative(t *testing.T) {
	m, h := openTestHandle(t, newFakeAdapter())
	if currentPlatform == PlatformWindows {
		t.Skip("SetMinDataLength has no Windows equivalent")
	}
	require.NoError(t, m.SetMinDataLength(h, 1))
}

func TestFastFDUnknownHandle(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	_, err := m.fastFD(Handle(404))
	require.Error(t, err)
}

// eofOnceAdapter reports StatusEOF from read regardless of fd, so
// ReadString's EOF propagation can be exercised without a real peer closing
// the connection.
type eofOnceAdapter struct {
	*fakeAdapter
}

func (a *eofOnceAdapter) read(fd int, buf []byte) (int, AdapterStatus, error) {
	return 0, StatusEOF, nil
}
