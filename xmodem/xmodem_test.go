package xmodem

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// duplexEnd is one side of an in-memory full-duplex byte stream built from
// two io.Pipes, letting SendFile and ReceiveFile run concurrently in the
// same test the way a real port and its peer would.
type duplexEnd struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (d *duplexEnd) Read(p []byte) (int, error)  { return d.r.Read(p) }
func (d *duplexEnd) Write(p []byte) (int, error) { return d.w.Write(p) }

func newDuplexPair() (*duplexEnd, *duplexEnd) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()
	return &duplexEnd{r: ar, w: bw}, &duplexEnd{r: br, w: aw}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	sender, receiver := newDuplexPair()

	srcDir := t.TempDir()
	srcPath := srcDir + "/src.bin"
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(srcPath, payload, 0o644))

	dstPath := srcDir + "/dst.bin"

	errCh := make(chan error, 1)
	go func() {
		errCh <- ReceiveFile(receiver, dstPath)
	}()

	require.NoError(t, SendFile(sender, srcPath))
	require.NoError(t, <-errCh)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	require.True(t, len(got) >= len(payload))
	require.Equal(t, payload, got[:len(payload)])
}

func TestChecksum(t *testing.T) {
	require.Equal(t, byte(0), checksum(nil))
	require.Equal(t, byte(6), checksum([]byte{1, 2, 3}))
}
