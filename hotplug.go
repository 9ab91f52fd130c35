package serial

import (
	"sync"
	"time"
)

// PortMonitorListener receives hotplug notifications for the port a watch
// was registered against. details carries whatever USB metadata the
// enumeration backend could gather at the moment of the event: on PortAdded
// it reflects the newly-seen port, on PortRemoved it reflects the last
// snapshot taken of that port before it disappeared (the OS can no longer
// describe a device that is already gone).
type PortMonitorListener func(details PortDetails, evt PortMonitorEvent)

// hotplugMonitor (C9) registers/unregisters port add/remove watches. Where
// the native adapter offers no event-based hotplug notification, it falls
// back to polling listPorts at pollInterval and diffing snapshots, which is
// true of every platform this library targets today.
type hotplugMonitor struct {
	listPorts func() ([]PortDetails, error)
	logger    Logger

	pollInterval time.Duration

	mu      sync.Mutex
	watches map[Handle]*portWatch
}

type portWatch struct {
	portName string
	listener PortMonitorListener
	stop     chan struct{}
	done     chan struct{}
}

func newHotplugMonitor(listPorts func() ([]PortDetails, error), logger Logger) *hotplugMonitor {
	return &hotplugMonitor{
		listPorts:    listPorts,
		logger:       logger,
		pollInterval: 1 * time.Second,
		watches:      make(map[Handle]*portWatch),
	}
}

// register starts watching portName for h and returns once the baseline
// snapshot has been taken, so the very next poll only reports genuine
// changes rather than the port's current presence.
func (m *hotplugMonitor) register(h Handle, portName string, listener PortMonitorListener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.watches[h]; ok {
		close(existing.stop)
		<-existing.done
	}

	w := &portWatch{
		portName: portName,
		listener: listener,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.watches[h] = w

	details, present, _ := m.findDetails(portName)
	go m.watchLoop(w, details, present)
	m.logger.Debugw("hotplug watch registered", "handle", h, "port", portName)
}

// findDetails returns the current details for name and whether it is
// present at all. On a listPorts error it reports absent together with the
// error rather than failing the watch; watchLoop skips such a poll, so a
// transient enumeration failure is not mistaken for the port being unplugged.
func (m *hotplugMonitor) findDetails(name string) (PortDetails, bool, error) {
	ports, err := m.listPorts()
	if err != nil {
		return PortDetails{Name: name}, false, err
	}
	for _, p := range ports {
		if p.Name == name {
			return p, true, nil
		}
	}
	return PortDetails{Name: name}, false, nil
}

func (m *hotplugMonitor) watchLoop(w *portWatch, lastKnown PortDetails, wasPresent bool) {
	defer close(w.done)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			details, isPresent, err := m.findDetails(w.portName)
			if err != nil {
				continue
			}
			if isPresent {
				lastKnown = details
			}
			if isPresent != wasPresent {
				wasPresent = isPresent
				if isPresent {
					w.listener(details, PortAdded)
				} else {
					w.listener(lastKnown, PortRemoved)
				}
			}
		}
	}
}

// unregister terminates the watcher thread for h synchronously.
func (m *hotplugMonitor) unregister(h Handle) {
	m.mu.Lock()
	w, ok := m.watches[h]
	if ok {
		delete(m.watches, h)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	close(w.stop)
	<-w.done
	m.logger.Debugw("hotplug watch unregistered", "handle", h)
}
