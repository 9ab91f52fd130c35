package serial

import (
	"time"
)

// fakeAdapter is an in-memory stand-in for nativeAdapter used across the
// core package's tests, so they exercise the registry/dispatcher/looper/
// manager wiring without touching a real device.
type fakeAdapter struct {
	openErr  error
	nextFD   int
	onListen func(fd int, stop <-chan struct{}, onData func([]byte), onEvent func(EventMask))
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{nextFD: 1}
}

func (f *fakeAdapter) open(portName string, enableRead, enableWrite, exclusive bool) (int, error) {
	if f.openErr != nil {
		return 0, f.openErr
	}
	fd := f.nextFD
	f.nextFD++
	return fd, nil
}

func (f *fakeAdapter) close(fd int) error { return nil }

func (f *fakeAdapter) read(fd int, buf []byte) (int, AdapterStatus, error) {
	return 0, StatusNoData, nil
}

func (f *fakeAdapter) write(fd int, buf []byte, interByteDelay time.Duration) (int, error) {
	return len(buf), nil
}

func (f *fakeAdapter) configureData(fd int, dataBits int, stopBits StopBits, parity Parity, baud int, customBaud int) error {
	return nil
}

func (f *fakeAdapter) configureControl(fd int, flow FlowControl, xon, xoff byte, parityFrameCheck, overflowCheck bool) error {
	return nil
}

func (f *fakeAdapter) currentConfiguration(fd int) ([]string, error) {
	return []string{"fake"}, nil
}

func (f *fakeAdapter) setRTS(fd int, assert bool) error { return nil }
func (f *fakeAdapter) setDTR(fd int, assert bool) error { return nil }

func (f *fakeAdapter) lineStatus(fd int) (LineStatus, error) {
	return LineStatus{}, nil
}

func (f *fakeAdapter) interruptCounts(fd int) (InterruptCounts, error) {
	return InterruptCounts{}, nil
}

func (f *fakeAdapter) clearBuffers(fd int, rx, tx bool) error  { return nil }
func (f *fakeAdapter) sendBreak(fd int, d time.Duration) error { return nil }

func (f *fakeAdapter) bufferByteCounts(fd int) (rx, tx int, err error) { return 0, 0, nil }

func (f *fakeAdapter) setMinDataLength(fd int, n int) error { return nil }

func (f *fakeAdapter) listen(fd int, stop <-chan struct{}, onData func([]byte), onEvent func(EventMask)) error {
	if f.onListen != nil {
		f.onListen(fd, stop, onData, onEvent)
	}
	<-stop
	return nil
}
