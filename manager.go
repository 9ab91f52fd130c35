package serial

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/serialcore/uartcore/enumerator"
	"github.com/serialcore/uartcore/xmodem"
)

// Manager (C10) is the single public entry point for this library. It
// composes the registry, dispatcher, and hotplug monitor and enforces the
// invariants that span them; application code never talks to the native
// adapter, registry, or dispatcher directly.
type Manager struct {
	adapter    nativeAdapter
	registry   *portRegistry
	dispatcher *dispatcher
	hotplug    *hotplugMonitor
	logger     Logger

	// syncMu backs the two instance-synchronized operations, ClearIOBuffers
	// and SendBreak, so concurrent callers of either serialize against each
	// other without blocking ordinary reads/writes on the same handle.
	syncMu sync.Mutex
}

// NewManager constructs a Manager bound to the platform-native adapter and
// a silent logger. Call SetLogger to attach structured logging.
func NewManager() *Manager {
	logger := Logger(nopLogger{})
	adapter := newPlatformAdapter()
	return &Manager{
		adapter:    adapter,
		registry:   newPortRegistry(),
		dispatcher: newDispatcher(adapter, logger),
		hotplug:    newHotplugMonitor(listDetailedPorts, logger),
		logger:     logger,
	}
}

// SetLogger swaps the Manager's logger. It is not safe to call concurrently
// with other Manager operations.
func (m *Manager) SetLogger(l Logger) {
	m.logger = l
	m.dispatcher.logger = l
	m.hotplug.logger = l
}

// ListPorts enumerates available serial port device names.
func (m *Manager) ListPorts() ([]string, error) {
	return ListPorts()
}

// listDetailedPorts adapts enumerator.GetDetailedPortsList to the bare
// []PortDetails shape the hotplug monitor diffs against, so its baseline and
// every poll carry the USB metadata a registered PortMonitorListener sees.
func listDetailedPorts() ([]PortDetails, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	out := make([]PortDetails, 0, len(details))
	for _, d := range details {
		out = append(out, PortDetails{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return out, nil
}

// Open opens portName and returns a Handle. DuplicateExclusive (-1) is
// returned, without ever calling the adapter, when exclusive is true and
// this process already holds a HIR for portName, whether that HIR was
// opened exclusively or not.
func (m *Manager) Open(portName string, enableRead, enableWrite, exclusive bool) (Handle, error) {
	if portName == "" {
		return 0, newError(KindNullArg, "open")
	}
	if !enableRead && !enableWrite {
		return 0, newError(KindInvalidArg, "open")
	}
	if currentPlatform == PlatformWindows && !exclusive {
		return 0, newError(KindPlatformConstraint, "open")
	}
	if exclusive && m.registry.hasByName(portName) {
		return DuplicateExclusive, nil
	}

	fd, err := m.adapter.open(portName, enableRead, enableWrite, exclusive)
	if err != nil {
		return 0, wrapError(KindIOError, "open", err)
	}
	if fd < 0 {
		return 0, ioError("open", fd)
	}

	h := Handle(fd)
	m.registry.add(&handleInfoRecord{
		portName:  portName,
		fd:        fd,
		handle:    h,
		exclusive: exclusive,
	})
	m.logger.Debugw("port opened", "port", portName, "handle", h, "exclusive", exclusive)
	return h, nil
}

// Close closes h. It fails with MustUnregisterData/MustUnregisterEvent if a
// listener is still bound, and removes the HIR only once the adapter
// reports success.
func (m *Manager) Close(h Handle) error {
	rec, ok := m.registry.get(h)
	if !ok {
		return newError(KindUnknownHandle, "close")
	}
	if rec.hasData {
		return newError(KindMustUnregisterData, "close")
	}
	if rec.hasEvent {
		return newError(KindMustUnregisterEvent, "close")
	}

	m.dispatcher.teardown(h)
	m.hotplug.unregister(h)

	if err := m.adapter.close(rec.fd); err != nil {
		return wrapError(KindIOError, "close", err)
	}
	m.registry.remove(h)
	m.logger.Debugw("port closed", "handle", h)
	return nil
}

// SetRTS asserts or clears the Request To Send modem line.
func (m *Manager) SetRTS(h Handle, assert bool) error {
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	return m.adapter.setRTS(fd, assert)
}

// SetDTR asserts or clears the Data Terminal Ready modem line.
func (m *Manager) SetDTR(h Handle, assert bool) error {
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	return m.adapter.setDTR(fd, assert)
}

// ClearIOBuffers discards pending bytes in the receive and/or transmit
// buffers. It is a no-op, never reaching the adapter, when both flags are
// false.
func (m *Manager) ClearIOBuffers(h Handle, rx, tx bool) error {
	if !rx && !tx {
		return nil
	}
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	return m.adapter.clearBuffers(fd, rx, tx)
}

// SendBreak asserts a BREAK condition on the TX line for d.
func (m *Manager) SendBreak(h Handle, d time.Duration) error {
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	return m.adapter.sendBreak(fd, d)
}

// InterruptCounts returns the fixed 11-element diagnostic vector. Only
// Linux populates non-zero values.
func (m *Manager) InterruptCounts(h Handle) (InterruptCounts, error) {
	fd, err := m.fastFD(h)
	if err != nil {
		return InterruptCounts{}, err
	}
	return m.adapter.interruptCounts(fd)
}

// LineStatus returns the current modem-line vector (CTS, DSR, DCD, RI,
// LOOP, RTS, DTR). A platform that cannot report a given signal leaves it
// at 0.
func (m *Manager) LineStatus(h Handle) (LineStatus, error) {
	fd, err := m.fastFD(h)
	if err != nil {
		return LineStatus{}, err
	}
	return m.adapter.lineStatus(fd)
}

// IOBufferByteCounts returns the number of bytes currently queued in the
// receive and transmit buffers.
func (m *Manager) IOBufferByteCounts(h Handle) (rx, tx int, err error) {
	fd, err := m.fastFD(h)
	if err != nil {
		return 0, 0, err
	}
	return m.adapter.bufferByteCounts(fd)
}

// RegisterDataListener attaches fn as h's data listener and returns a
// token identifying it for Unregister/Pause/Resume. fn is wired onto the
// looper before the dispatcher's delivery goroutine is ever started (or, if
// the looper already exists, before this call returns), so adapter delivery
// for h can never begin — nor an already-running looper ever invoke a
// callback — with fn unset; no byte delivered after registration can be
// dropped for lack of a listener.
func (m *Manager) RegisterDataListener(h Handle, fn DataListener) (ListenerToken, error) {
	if fn == nil {
		return 0, newError(KindNullArg, "register_data_listener")
	}
	var tok ListenerToken
	err := m.registry.withRecord(h, func(rec *handleInfoRecord) error {
		if rec.hasData {
			return newError(KindAlreadyHasDataListener, "register_data_listener")
		}
		mask := rec.eventMask
		l := m.dispatcher.ensureLooper(h, rec.fd, func(l *looper) {
			l.setData(fn)
			l.setMask(mask)
		})
		tok = m.registry.newToken()
		rec.dataToken = tok
		rec.hasData = true
		rec.looper = l
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tok, nil
}

// UnregisterDataListener locates the looper holding tok and detaches the
// data listener, returning only after the looper's worker has either
// exited (no listeners remain) or continues serving the event side alone.
func (m *Manager) UnregisterDataListener(tok ListenerToken) error {
	return m.unregisterListener(tok, true)
}

// RegisterEventListener attaches fn as h's line-event listener with the
// given initial mask, wired onto the looper before delivery can begin — see
// RegisterDataListener's note on why that ordering matters.
func (m *Manager) RegisterEventListener(h Handle, fn EventListener, mask EventMask) (ListenerToken, error) {
	if fn == nil {
		return 0, newError(KindNullArg, "register_event_listener")
	}
	var tok ListenerToken
	err := m.registry.withRecord(h, func(rec *handleInfoRecord) error {
		if rec.hasEvent {
			return newError(KindAlreadyHasEventListener, "register_event_listener")
		}
		l := m.dispatcher.ensureLooper(h, rec.fd, func(l *looper) {
			l.setEvent(fn, mask)
		})
		tok = m.registry.newToken()
		rec.eventToken = tok
		rec.hasEvent = true
		rec.eventMask = mask
		rec.looper = l
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tok, nil
}

// UnregisterEventListener mirrors UnregisterDataListener for the event
// side.
func (m *Manager) UnregisterEventListener(tok ListenerToken) error {
	return m.unregisterListener(tok, false)
}

func (m *Manager) unregisterListener(tok ListenerToken, data bool) error {
	rec, found, wasData := m.registry.findByToken(tok)
	if !found {
		return newError(KindUnknownListener, "unregister_listener")
	}
	if wasData != data {
		return newError(KindUnknownListener, "unregister_listener")
	}

	var teardown bool
	err := m.registry.withRecord(rec.handle, func(rec *handleInfoRecord) error {
		if data {
			rec.hasData = false
			rec.looper.clearData()
		} else {
			rec.hasEvent = false
			rec.looper.clearEvent()
		}
		teardown = !rec.hasData && !rec.hasEvent
		return nil
	})
	if err != nil {
		return err
	}
	if teardown {
		m.dispatcher.teardown(rec.handle)
	}
	return nil
}

// Pause suspends delivery on the looper that serves tok's handle until
// Resume is called; that looper carries both the data and the event
// listener of the handle, so both are paused. Notifications arriving while
// paused are dropped, and none of them fire on resume.
func (m *Manager) Pause(tok ListenerToken) error {
	rec, found, _ := m.registry.findByToken(tok)
	if !found {
		return newError(KindUnknownListener, "pause")
	}
	rec.looper.pause()
	return nil
}

// Resume reverses a prior Pause.
func (m *Manager) Resume(tok ListenerToken) error {
	rec, found, _ := m.registry.findByToken(tok)
	if !found {
		return newError(KindUnknownListener, "resume")
	}
	rec.looper.resume()
	return nil
}

// SetEventMask replaces the event mask applied above the adapter for the
// event listener identified by tok.
func (m *Manager) SetEventMask(tok ListenerToken, mask EventMask) error {
	rec, found, wasData := m.registry.findByToken(tok)
	if !found || wasData {
		return newError(KindUnknownListener, "set_event_mask")
	}
	rec.looper.setMask(mask)
	return nil
}

// GetEventMask returns the event mask currently applied for tok.
func (m *Manager) GetEventMask(tok ListenerToken) (EventMask, error) {
	rec, found, wasData := m.registry.findByToken(tok)
	if !found || wasData {
		return 0, newError(KindUnknownListener, "get_event_mask")
	}
	return rec.looper.getMask(), nil
}

// RegisterPortMonitor watches h's port name for add/remove hotplug events.
func (m *Manager) RegisterPortMonitor(h Handle, listener PortMonitorListener) error {
	rec, ok := m.registry.get(h)
	if !ok {
		return newError(KindUnknownHandle, "register_port_monitor")
	}
	m.hotplug.register(h, rec.portName, listener)
	return nil
}

// UnregisterPortMonitor stops the watch registered for h, synchronously.
func (m *Manager) UnregisterPortMonitor(h Handle) error {
	m.hotplug.unregister(h)
	return nil
}

// SendFile transfers the file at path to the peer on h using proto.
func (m *Manager) SendFile(h Handle, path string, proto FileTransferProtocol) error {
	if _, err := m.fastFD(h); err != nil {
		return err
	}
	if proto != XMODEM {
		return newError(KindInvalidArg, "send_file")
	}
	return xmodem.SendFile(m.stream(h), path)
}

// ReceiveFile receives a file transfer on h into path using proto.
func (m *Manager) ReceiveFile(h Handle, path string, proto FileTransferProtocol) error {
	if _, err := m.fastFD(h); err != nil {
		return err
	}
	if proto != XMODEM {
		return newError(KindInvalidArg, "receive_file")
	}
	return xmodem.ReceiveFile(m.stream(h), path)
}

func (m *Manager) stream(h Handle) io.ReadWriter {
	return &handleStream{m: m, h: h}
}

// handleStream adapts a Handle's byte I/O onto io.ReadWriter so the XMODEM
// engine can consume it without knowing about Manager or registries.
type handleStream struct {
	m *Manager
	h Handle
}

func (s *handleStream) Read(p []byte) (int, error) {
	res, err := s.m.ReadBytes(s.h, len(p))
	if err != nil {
		return 0, err
	}
	if res.EOF {
		return 0, io.EOF
	}
	if len(res.Data) == 0 {
		return 0, nil
	}
	n := copy(p, res.Data)
	return n, nil
}

func (s *handleStream) Write(p []byte) (int, error) {
	ok, err := s.m.WriteBytes(s.h, p, 0)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("write_bytes rejected empty buffer")
	}
	return len(p), nil
}
