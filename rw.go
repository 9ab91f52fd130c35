package serial

import (
	"encoding/binary"
	"time"
)

// WriteBytes hands buf to the adapter's transmit queue, honoring
// interByteDelay between bytes. A nil or empty buffer returns false
// without calling the adapter at all. The call returns only after every
// byte has been handed to the OS, not after it has left the wire.
func (m *Manager) WriteBytes(h Handle, buf []byte, interByteDelay time.Duration) (bool, error) {
	if len(buf) == 0 {
		return false, nil
	}
	fd, err := m.fastFD(h)
	if err != nil {
		return false, err
	}
	if _, err := m.adapter.write(fd, buf, interByteDelay); err != nil {
		return false, wrapError(KindIOError, "write_bytes", err)
	}
	return true, nil
}

// WriteSingleByte is WriteBytes for a one-byte buffer.
func (m *Manager) WriteSingleByte(h Handle, b byte, interByteDelay time.Duration) (bool, error) {
	return m.WriteBytes(h, []byte{b}, interByteDelay)
}

// WriteString UTF-8 encodes s and writes it.
func (m *Manager) WriteString(h Handle, s string, interByteDelay time.Duration) (bool, error) {
	return m.WriteBytes(h, []byte(s), interByteDelay)
}

// WriteInt packs v into width bytes using endian (EndianDefault behaves as
// EndianBig) and writes the result. width must be 2 or 4; a two-byte width
// silently truncates the value's high bits.
func (m *Manager) WriteInt(h Handle, v int64, interByteDelay time.Duration, endian Endian, width int) (bool, error) {
	buf, err := packInt(v, endian, width)
	if err != nil {
		return false, err
	}
	return m.WriteBytes(h, buf, interByteDelay)
}

// WriteIntArray concatenates the packed encoding of every value in vs, in
// array order, and writes the result as a single buffer.
func (m *Manager) WriteIntArray(h Handle, vs []int64, interByteDelay time.Duration, endian Endian, width int) (bool, error) {
	out := make([]byte, 0, len(vs)*width)
	for _, v := range vs {
		buf, err := packInt(v, endian, width)
		if err != nil {
			return false, err
		}
		out = append(out, buf...)
	}
	return m.WriteBytes(h, out, interByteDelay)
}

func packInt(v int64, endian Endian, width int) ([]byte, error) {
	switch width {
	case 2:
		buf := make([]byte, 2)
		if endian == EndianLittle {
			binary.LittleEndian.PutUint16(buf, uint16(v))
		} else {
			binary.BigEndian.PutUint16(buf, uint16(v))
		}
		return buf, nil
	case 4:
		buf := make([]byte, 4)
		if endian == EndianLittle {
			binary.LittleEndian.PutUint32(buf, uint32(v))
		} else {
			binary.BigEndian.PutUint32(buf, uint32(v))
		}
		return buf, nil
	default:
		return nil, newError(KindInvalidArg, "write_int")
	}
}

// ReadResult is the three-way outcome of ReadBytes: exactly one of Data,
// empty-with-no-error, or EOF=true is meaningful for a given call.
type ReadResult struct {
	Data []byte
	EOF  bool
}

// ReadBytes requests up to n bytes (DefaultReadByteCount if n<=0). It
// distinguishes "no data currently available" (empty Data, EOF false, nil
// error) from end of file (EOF true) from a hard adapter error.
func (m *Manager) ReadBytes(h Handle, n int) (ReadResult, error) {
	if n <= 0 {
		n = DefaultReadByteCount
	}
	fd, err := m.fastFD(h)
	if err != nil {
		return ReadResult{}, err
	}
	buf := make([]byte, n)
	read, status, err := m.adapter.read(fd, buf)
	switch status {
	case StatusEOF:
		return ReadResult{EOF: true}, nil
	case StatusErrorCode:
		return ReadResult{}, wrapError(KindIOError, "read_bytes", err)
	case StatusNoData:
		return ReadResult{Data: []byte{}}, nil
	default:
		if err != nil {
			return ReadResult{}, wrapError(KindIOError, "read_bytes", err)
		}
		return ReadResult{Data: buf[:read]}, nil
	}
}

// ReadString decodes the result of ReadBytes as UTF-8, propagating EOF.
func (m *Manager) ReadString(h Handle, n int) (string, bool, error) {
	res, err := m.ReadBytes(h, n)
	if err != nil {
		return "", false, err
	}
	if res.EOF {
		return "", true, nil
	}
	return string(res.Data), false, nil
}

// ReadSingleByte is ReadBytes for a one-byte request.
func (m *Manager) ReadSingleByte(h Handle) (ReadResult, error) {
	return m.ReadBytes(h, 1)
}

// SetMinDataLength sets the POSIX VMIN equivalent; Windows has no such
// knob and the call reports PlatformConstraint there instead of silently
// succeeding.
func (m *Manager) SetMinDataLength(h Handle, n int) error {
	if n < 0 {
		return newError(KindInvalidArg, "set_min_data_length")
	}
	if currentPlatform == PlatformWindows {
		return newError(KindPlatformConstraint, "set_min_data_length")
	}
	fd, err := m.fastFD(h)
	if err != nil {
		return err
	}
	return m.adapter.setMinDataLength(fd, n)
}

// fastFD resolves a handle to its native fd without going through the
// structural open/close validation path, keeping the byte I/O hot path
// cheap. The registry lock it takes is a single map lookup, not a
// multi-step invariant check.
func (m *Manager) fastFD(h Handle) (int, error) {
	rec, ok := m.registry.get(h)
	if !ok {
		return 0, newError(KindUnknownHandle, "")
	}
	return rec.fd, nil
}
