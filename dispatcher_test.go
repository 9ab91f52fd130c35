package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherEnsureLooperReusesExisting(t *testing.T) {
	d := newDispatcher(newFakeAdapter(), nopLogger{})
	defer d.teardown(1)

	l1 := d.ensureLooper(1, 10, nil)
	l2 := d.ensureLooper(1, 10, nil)
	require.Same(t, l1, l2)
}

func TestDispatcherTeardownStopsLooper(t *testing.T) {
	d := newDispatcher(newFakeAdapter(), nopLogger{})
	l := d.ensureLooper(1, 10, nil)
	require.False(t, l.isStopped())

	d.teardown(1)
	require.True(t, l.isStopped())

	_, ok := d.lookup(1)
	require.False(t, ok)
}

func TestDispatcherTeardownIsIdempotent(t *testing.T) {
	d := newDispatcher(newFakeAdapter(), nopLogger{})
	d.teardown(42) // no looper registered; must not panic or block
}

// TestDispatcherDeliversDataThroughListen exercises the guarantee that
// configure runs before the delivery goroutine is ever started: the fake
// adapter's listen implementation fires onData the instant it is called,
// with no handshake to wait for a listener to show up, and delivery must
// still land because ensureLooper attached it first.
func TestDispatcherDeliversDataThroughListen(t *testing.T) {
	adapter := newFakeAdapter()
	received := make(chan []byte, 1)
	adapter.onListen = func(fd int, stop <-chan struct{}, onData func([]byte), onEvent func(EventMask)) {
		onData([]byte("hi"))
	}

	d := newDispatcher(adapter, nopLogger{})
	d.ensureLooper(1, 10, func(l *looper) {
		l.setData(func(b []byte) { received <- b })
	})
	defer d.teardown(1)

	require.Equal(t, "hi", string(<-received))
}

// TestDispatcherEnsureLooperConfiguresBeforeReuse checks that configure
// also runs (under the dispatcher lock) when an existing looper is reused,
// not only on first creation.
func TestDispatcherEnsureLooperConfiguresBeforeReuse(t *testing.T) {
	d := newDispatcher(newFakeAdapter(), nopLogger{})
	defer d.teardown(1)

	l := d.ensureLooper(1, 10, nil)
	require.False(t, l.hasListeners())

	d.ensureLooper(1, 10, func(l *looper) {
		l.setData(func([]byte) {})
	})
	require.True(t, l.hasListeners())
}
