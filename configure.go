package serial

// ConfigureData sets the frame parameters: data bits, stop bits, parity,
// and baud rate. baud==BaudCustom tells the adapter to honor customBaud
// instead of the enumerated rate; callers pass customBaud=0 otherwise.
func (m *Manager) ConfigureData(h Handle, dataBits int, stopBits StopBits, parity Parity, baud int, customBaud int) error {
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	if baud != BaudCustom {
		customBaud = 0
	}
	return m.adapter.configureData(fd, dataBits, stopBits, parity, baud, customBaud)
}

// ConfigureControl sets flow control and the adapter's error-checking
// behavior for parity framing and buffer overflow.
func (m *Manager) ConfigureControl(h Handle, flow FlowControl, xon, xoff byte, parityFrameCheck, overflowCheck bool) error {
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	return m.adapter.configureControl(fd, flow, xon, xoff, parityFrameCheck, overflowCheck)
}

// CurrentConfiguration returns the raw platform configuration fields in
// their documented order: POSIX termios fields on Unix, DCB fields on
// Windows.
func (m *Manager) CurrentConfiguration(h Handle) ([]string, error) {
	fd, err := m.fastFD(h)
	if err != nil {
		return nil, err
	}
	return m.adapter.currentConfiguration(fd)
}
