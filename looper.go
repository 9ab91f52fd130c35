package serial

import (
	"sync"
	"sync/atomic"
)

// looperState is the state machine a looper walks through:
//
//	(start) -> running --pause()--> paused --resume()--> running
//	             |                     |
//	             |                     +-- stop() --> stopped (terminal)
//	             +-- stop() -----------------------> stopped (terminal)
type looperState int32

const (
	looperRunning looperState = iota
	looperPaused
	looperStopped
)

// DataListener receives raw bytes as they arrive. Errors/EOF are not routed
// through this callback: a closed or broken port simply stops delivering.
type DataListener func(data []byte)

// EventListener receives a line event already filtered by the looper's
// event mask; it is never called with a zero mask result.
type EventListener func(evt EventMask)

// looper (C8) is the background consumer the Dispatcher owns for one
// handle. It fuses the data and event delivery paths: up to one of each
// listener kind is attached at a time, both driven by the same adapter
// callback stream, preserving per-handle delivery order.
type looper struct {
	state atomic.Int32

	mu       sync.Mutex
	data     DataListener
	event    EventListener
	mask     EventMask
	pausedCh chan struct{}

	stopCh chan struct{}
	done   chan struct{}

	logger Logger
}

func newLooper(logger Logger) *looper {
	l := &looper{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
	l.state.Store(int32(looperRunning))
	return l
}

func (l *looper) setData(fn DataListener) {
	l.mu.Lock()
	l.data = fn
	l.mu.Unlock()
}

func (l *looper) setEvent(fn EventListener, mask EventMask) {
	l.mu.Lock()
	l.event = fn
	l.mask = mask
	l.mu.Unlock()
}

func (l *looper) clearData() {
	l.mu.Lock()
	l.data = nil
	l.mu.Unlock()
}

func (l *looper) clearEvent() {
	l.mu.Lock()
	l.event = nil
	l.mu.Unlock()
}

func (l *looper) hasListeners() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data != nil || l.event != nil
}

func (l *looper) setMask(mask EventMask) {
	l.mu.Lock()
	l.mask = mask
	l.mu.Unlock()
}

func (l *looper) getMask() EventMask {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mask
}

func (l *looper) pause() {
	l.state.Store(int32(looperPaused))
}

func (l *looper) resume() {
	l.state.CompareAndSwap(int32(looperPaused), int32(looperRunning))
}

// stop transitions the looper to its terminal state and blocks until the
// worker goroutine started by the dispatcher has actually exited, so
// tear-down completes before the caller regains control.
func (l *looper) stop() {
	l.state.Store(int32(looperStopped))
	select {
	case <-l.stopCh:
	default:
		close(l.stopCh)
	}
	<-l.done
}

func (l *looper) isStopped() bool {
	return looperState(l.state.Load()) == looperStopped
}

// onData applies the Paused/Stopped gate (data callbacks are delivered
// verbatim while Running, dropped otherwise) and invokes the listener,
// recovering from and logging any panic so a bad listener never tears
// down the looper.
func (l *looper) onData(buf []byte) {
	if looperState(l.state.Load()) != looperRunning {
		return
	}
	l.mu.Lock()
	fn := l.data
	l.mu.Unlock()
	if fn == nil {
		return
	}
	l.safeInvoke(func() { fn(buf) })
}

// onEvent applies the mask filter above the adapter, deliberately not
// pushed down into the native layer, then the Paused/Stopped gate, then
// invokes the listener.
func (l *looper) onEvent(evt EventMask) {
	l.mu.Lock()
	fn := l.event
	mask := l.mask
	l.mu.Unlock()
	if fn == nil {
		return
	}
	filtered := evt & mask
	if filtered == 0 {
		return
	}
	if looperState(l.state.Load()) != looperRunning {
		return
	}
	l.safeInvoke(func() { fn(filtered) })
}

func (l *looper) safeInvoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warnw("listener callback panicked", "panic", r)
		}
	}()
	fn()
}
