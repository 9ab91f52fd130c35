package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLooperOnDataDeliversWhileRunning(t *testing.T) {
	l := newLooper(nopLogger{})
	got := make(chan []byte, 1)
	l.setData(func(b []byte) { got <- b })

	l.onData([]byte("hello"))
	select {
	case b := <-got:
		require.Equal(t, "hello", string(b))
	case <-time.After(time.Second):
		t.Fatal("listener was not invoked")
	}
}

func TestLooperOnDataDroppedWhilePaused(t *testing.T) {
	l := newLooper(nopLogger{})
	got := make(chan []byte, 1)
	l.setData(func(b []byte) { got <- b })
	l.pause()

	l.onData([]byte("hello"))
	select {
	case <-got:
		t.Fatal("listener fired while paused")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLooperOnEventFiltersByMask(t *testing.T) {
	l := newLooper(nopLogger{})
	got := make(chan EventMask, 1)
	l.setEvent(func(m EventMask) { got <- m }, MaskCTS)

	l.onEvent(MaskDSR)
	select {
	case <-got:
		t.Fatal("event not in mask should be filtered")
	case <-time.After(50 * time.Millisecond):
	}

	l.onEvent(MaskCTS | MaskDSR)
	select {
	case m := <-got:
		require.Equal(t, MaskCTS, m)
	case <-time.After(time.Second):
		t.Fatal("masked event was not delivered")
	}
}

func TestLooperSafeInvokeRecoversPanic(t *testing.T) {
	l := newLooper(nopLogger{})
	l.setData(func([]byte) { panic("boom") })

	require.NotPanics(t, func() { l.onData([]byte("x")) })
}

func TestLooperPauseResume(t *testing.T) {
	l := newLooper(nopLogger{})
	require.False(t, l.isStopped())
	l.pause()
	require.Equal(t, looperPaused, looperState(l.state.Load()))
	l.resume()
	require.Equal(t, looperRunning, looperState(l.state.Load()))
}

func TestLooperStopIsTerminal(t *testing.T) {
	l := newLooper(nopLogger{})
	close(l.done)
	l.stop()
	require.True(t, l.isStopped())

	// resume must not revive a stopped looper
	l.resume()
	require.True(t, l.isStopped())
}

func TestLooperSetMaskGetMask(t *testing.T) {
	l := newLooper(nopLogger{})
	l.setMask(MaskDCD)
	require.Equal(t, MaskDCD, l.getMask())
}

func TestLooperHasListeners(t *testing.T) {
	l := newLooper(nopLogger{})
	require.False(t, l.hasListeners())
	l.setData(func([]byte) {})
	require.True(t, l.hasListeners())
	l.clearData()
	require.False(t, l.hasListeners())
}
