package serial

import "time"

// nativeAdapter is the Native Serial Adapter collaborator (C1): the thin
// platform-specific layer the Manager Façade calls into. Every operation
// returns either a non-negative result or a negative status code; Read
// additionally reports an AdapterStatus alongside its byte count so the
// Read/Write Façade can distinguish "no data yet" from EOF from a hard
// error without resorting to sentinel byte counts.
//
// Implementations live in the adapter_<os>.go files and never appear in the
// public API; application code only ever sees the Manager Façade.
type nativeAdapter interface {
	open(portName string, enableRead, enableWrite, exclusive bool) (int, error)
	close(fd int) error

	read(fd int, buf []byte) (int, AdapterStatus, error)
	write(fd int, buf []byte, interByteDelay time.Duration) (int, error)

	configureData(fd int, dataBits int, stopBits StopBits, parity Parity, baud int, customBaud int) error
	configureControl(fd int, flow FlowControl, xon, xoff byte, parityFrameCheck, overflowCheck bool) error
	currentConfiguration(fd int) ([]string, error)

	setRTS(fd int, assert bool) error
	setDTR(fd int, assert bool) error
	lineStatus(fd int) (LineStatus, error)
	interruptCounts(fd int) (InterruptCounts, error)

	clearBuffers(fd int, rx, tx bool) error
	sendBreak(fd int, d time.Duration) error
	bufferByteCounts(fd int) (rx, tx int, err error)

	setMinDataLength(fd int, n int) error

	// listen delivers raw data/event notifications to onData/onEvent until
	// stop is closed. It returns once the native delivery mechanism has
	// been torn down, never leaving an orphan goroutine or OS thread
	// behind.
	listen(fd int, stop <-chan struct{}, onData func([]byte), onEvent func(EventMask)) error
}

func newPlatformAdapter() nativeAdapter {
	return newNativeAdapter()
}
