package serial

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// portSetLister returns a snapshot of port details that can be mutated
// between polls to simulate a device being plugged in or unplugged.
type portSetLister struct {
	mu    sync.Mutex
	ports []PortDetails
}

func (l *portSetLister) list() ([]PortDetails, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PortDetails, len(l.ports))
	copy(out, l.ports)
	return out, nil
}

func (l *portSetLister) set(ports ...PortDetails) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ports = ports
}

func newFastHotplugMonitor(lister *portSetLister) *hotplugMonitor {
	m := newHotplugMonitor(lister.list, nopLogger{})
	m.pollInterval = 10 * time.Millisecond
	return m
}

func TestHotplugRegisterReportsAddedAfterPlug(t *testing.T) {
	lister := &portSetLister{}
	m := newFastHotplugMonitor(lister)

	evts := make(chan PortMonitorEvent, 4)
	m.register(1, "/dev/ttyACM0", func(details PortDetails, evt PortMonitorEvent) { evts <- evt })
	defer m.unregister(1)

	lister.set(PortDetails{Name: "/dev/ttyACM0", VID: "2341", PID: "0043"})

	select {
	case evt := <-evts:
		require.Equal(t, PortAdded, evt)
	case <-time.After(time.Second):
		t.Fatal("no PortAdded event observed")
	}
}

func TestHotplugRegisterReportsAddedDetailsCarryUSBMetadata(t *testing.T) {
	lister := &portSetLister{}
	m := newFastHotplugMonitor(lister)

	evts := make(chan PortDetails, 4)
	m.register(1, "/dev/ttyACM0", func(details PortDetails, evt PortMonitorEvent) {
		if evt == PortAdded {
			evts <- details
		}
	})
	defer m.unregister(1)

	lister.set(PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043", SerialNumber: "55"})

	select {
	case details := <-evts:
		require.True(t, details.IsUSB)
		require.Equal(t, "2341", details.VID)
		require.Equal(t, "55", details.SerialNumber)
	case <-time.After(time.Second):
		t.Fatal("no PortAdded event observed")
	}
}

func TestHotplugRegisterReportsRemovedAfterUnplug(t *testing.T) {
	lister := &portSetLister{}
	lister.set(PortDetails{Name: "/dev/ttyACM0", VID: "2341", PID: "0043"})
	m := newFastHotplugMonitor(lister)

	evts := make(chan PortDetails, 4)
	m.register(1, "/dev/ttyACM0", func(details PortDetails, evt PortMonitorEvent) {
		if evt == PortRemoved {
			evts <- details
		}
	})
	defer m.unregister(1)

	lister.set()

	select {
	case details := <-evts:
		// the OS can no longer describe a device that is already gone, so the
		// removal event carries the last snapshot taken while it was present.
		require.Equal(t, "2341", details.VID)
	case <-time.After(time.Second):
		t.Fatal("no PortRemoved event observed")
	}
}

func TestHotplugUnregisterStopsWatchSynchronously(t *testing.T) {
	lister := &portSetLister{}
	m := newFastHotplugMonitor(lister)

	m.register(1, "/dev/ttyACM0", func(PortDetails, PortMonitorEvent) {})
	m.unregister(1)

	m.mu.Lock()
	_, stillWatching := m.watches[1]
	m.mu.Unlock()
	require.False(t, stillWatching)
}

func TestHotplugUnregisterUnknownHandleIsNoop(t *testing.T) {
	lister := &portSetLister{}
	m := newFastHotplugMonitor(lister)
	m.unregister(999) // must not panic or block
}

func TestHotplugRegisterTwiceReplacesPriorWatch(t *testing.T) {
	lister := &portSetLister{}
	m := newFastHotplugMonitor(lister)

	firstEvts := make(chan PortMonitorEvent, 4)
	m.register(1, "/dev/ttyACM0", func(PortDetails, PortMonitorEvent) { firstEvts <- PortAdded })

	secondEvts := make(chan PortMonitorEvent, 4)
	m.register(1, "/dev/ttyACM1", func(details PortDetails, evt PortMonitorEvent) { secondEvts <- evt })
	defer m.unregister(1)

	lister.set(PortDetails{Name: "/dev/ttyACM0"}, PortDetails{Name: "/dev/ttyACM1"})

	select {
	case evt := <-secondEvts:
		require.Equal(t, PortAdded, evt)
	case <-time.After(time.Second):
		t.Fatal("replacement watch never fired")
	}
	select {
	case <-firstEvts:
		t.Fatal("original watch kept running after being replaced")
	case <-time.After(50 * time.Millisecond):
	}
}
