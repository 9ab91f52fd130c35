package serial

import (
	"sync"
)

// dispatcher (C7) owns every looper currently active in the process and is
// the only component allowed to spawn or join a looper worker goroutine.
// Teardown blocks until the worker has been joined before returning control
// to the caller. ensureLooper returns as soon as the worker goroutine has
// been started; it does not wait for the adapter's delivery to begin.
type dispatcher struct {
	adapter nativeAdapter
	logger  Logger

	mu      sync.Mutex
	loopers map[Handle]*looper
}

func newDispatcher(adapter nativeAdapter, logger Logger) *dispatcher {
	return &dispatcher{
		adapter: adapter,
		logger:  logger,
		loopers: make(map[Handle]*looper),
	}
}

// ensureLooper returns the looper for h, spawning the adapter delivery
// goroutine on first use. configure, if non-nil, runs against the looper
// before the delivery goroutine is ever started (or, for an already-running
// looper, before ensureLooper returns) — this is what lets a caller attach
// its listener with a guarantee that no callback can have fired yet,
// instead of racing the dispatcher's own goroutine into adapter.listen.
func (d *dispatcher) ensureLooper(h Handle, fd int, configure func(*looper)) *looper {
	d.mu.Lock()
	defer d.mu.Unlock()

	if l, ok := d.loopers[h]; ok {
		if configure != nil {
			configure(l)
		}
		return l
	}

	l := newLooper(d.logger)
	if configure != nil {
		configure(l)
	}
	d.loopers[h] = l

	go func() {
		defer close(l.done)
		err := d.adapter.listen(fd, l.stopCh, l.onData, l.onEvent)
		if err != nil {
			d.logger.Warnw("looper listen exited with error", "handle", h, "error", err)
		}
	}()

	d.logger.Debugw("looper started", "handle", h)
	return l
}

// teardown stops and joins the looper for h and removes it from the
// dispatcher. It is idempotent: tearing down an already-absent handle is a
// no-op.
func (d *dispatcher) teardown(h Handle) {
	d.mu.Lock()
	l, ok := d.loopers[h]
	if ok {
		delete(d.loopers, h)
	}
	d.mu.Unlock()

	if !ok {
		return
	}
	l.stop()
	d.logger.Debugw("looper stopped", "handle", h)
}

func (d *dispatcher) lookup(h Handle) (*looper, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.loopers[h]
	return l, ok
}
