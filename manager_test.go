package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestManager(adapter *fakeAdapter) *Manager {
	logger := Logger(nopLogger{})
	return &Manager{
		adapter:    adapter,
		registry:   newPortRegistry(),
		dispatcher: newDispatcher(adapter, logger),
		hotplug:    newHotplugMonitor(func() ([]PortDetails, error) { return nil, nil }, logger),
		logger:     logger,
	}
}

func TestManagerOpenRejectsEmptyPortName(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	_, err := m.Open("", true, true, false)
	require.Error(t, err)
}

func TestManagerOpenRejectsNeitherReadNorWrite(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	_, err := m.Open("/dev/ttyACM0", false, false, false)
	require.Error(t, err)
}

func TestManagerOpenCloseRoundTrip(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, true)
	require.NoError(t, err)
	require.NoError(t, m.Close(h))

	_, ok := m.registry.get(h)
	require.False(t, ok)
}

func TestManagerOpenDuplicateExclusiveShortCircuits(t *testing.T) {
	adapter := newFakeAdapter()
	m := newTestManager(adapter)
	h1, err := m.Open("/dev/ttyACM0", true, true, true)
	require.NoError(t, err)

	h2, err := m.Open("/dev/ttyACM0", true, true, true)
	require.NoError(t, err)
	require.Equal(t, DuplicateExclusive, h2)

	// adapter.open must have been called exactly once — the duplicate never
	// reached it.
	require.Equal(t, 2, adapter.nextFD)
	require.NoError(t, m.Close(h1))
}

func TestManagerOpenExclusiveAfterNonExclusiveShortCircuits(t *testing.T) {
	adapter := newFakeAdapter()
	m := newTestManager(adapter)
	h1, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	h2, err := m.Open("/dev/ttyACM0", true, true, true)
	require.NoError(t, err)
	require.Equal(t, DuplicateExclusive, h2)

	// adapter.open must have been called exactly once — the exclusive
	// request never reached it because a non-exclusive HIR already existed.
	require.Equal(t, 2, adapter.nextFD)
	require.NoError(t, m.Close(h1))
}

func TestManagerCloseUnknownHandle(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	err := m.Close(Handle(999))
	require.Error(t, err)

	var pe *PortError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindUnknownHandle, pe.Kind)
}

func TestManagerCloseMustUnregisterDataFirst(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	_, err = m.RegisterDataListener(h, func([]byte) {})
	require.NoError(t, err)

	err = m.Close(h)
	require.Error(t, err)
	var pe *PortError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindMustUnregisterData, pe.Kind)
}

func TestManagerCloseMustUnregisterEventFirst(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	_, err = m.RegisterEventListener(h, func(EventMask) {}, MaskCTS)
	require.NoError(t, err)

	err = m.Close(h)
	require.Error(t, err)
	var pe *PortError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindMustUnregisterEvent, pe.Kind)
}

func TestManagerRegisterDataListenerRejectsSecondRegistration(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	_, err = m.RegisterDataListener(h, func([]byte) {})
	require.NoError(t, err)

	_, err = m.RegisterDataListener(h, func([]byte) {})
	require.Error(t, err)
}

func TestManagerUnregisterDataListenerAllowsClose(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	tok, err := m.RegisterDataListener(h, func([]byte) {})
	require.NoError(t, err)
	require.NoError(t, m.UnregisterDataListener(tok))
	require.NoError(t, m.Close(h))
}

func TestManagerUnregisterListenerUnknownToken(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	err := m.UnregisterDataListener(ListenerToken(12345))
	require.Error(t, err)
}

func TestManagerPauseResumeListener(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	got := make(chan []byte, 1)
	tok, err := m.RegisterDataListener(h, func(b []byte) { got <- b })
	require.NoError(t, err)

	require.NoError(t, m.Pause(tok))
	rec, _ := m.registry.get(h)
	rec.looper.onData([]byte("x"))
	select {
	case <-got:
		t.Fatal("listener fired while paused")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, m.Resume(tok))
	rec.looper.onData([]byte("x"))
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("listener did not fire after resume")
	}
}

func TestManagerSetGetEventMask(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	tok, err := m.RegisterEventListener(h, func(EventMask) {}, MaskCTS)
	require.NoError(t, err)

	require.NoError(t, m.SetEventMask(tok, MaskDSR))
	mask, err := m.GetEventMask(tok)
	require.NoError(t, err)
	require.Equal(t, MaskDSR, mask)
}

func TestManagerGetEventMaskRejectsDataToken(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	tok, err := m.RegisterDataListener(h, func([]byte) {})
	require.NoError(t, err)

	_, err = m.GetEventMask(tok)
	require.Error(t, err)
}

func TestManagerClearIOBuffersNoOpWhenBothFalse(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	require.NoError(t, m.ClearIOBuffers(h, false, false))
}

func TestManagerSendBreak(t *testing.T) {
	m := newTestManager(newFakeAdapter())
	h, err := m.Open("/dev/ttyACM0", true, true, false)
	require.NoError(t, err)

	require.NoError(t, m.SendBreak(h, 10*time.Millisecond))
}
