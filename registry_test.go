package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryHasByNameMatchesExclusiveRecord(t *testing.T) {
	r := newPortRegistry()
	r.add(&handleInfoRecord{portName: "/dev/ttyACM0", handle: 1, exclusive: true})

	require.True(t, r.hasByName("/dev/ttyACM0"))
	require.False(t, r.hasByName("/dev/ttyACM1"))
}

func TestRegistryHasByNameMatchesNonExclusiveRecord(t *testing.T) {
	r := newPortRegistry()
	r.add(&handleInfoRecord{portName: "/dev/ttyACM0", handle: 1, exclusive: false})

	require.True(t, r.hasByName("/dev/ttyACM0"))
}

func TestRegistryAddGetRemove(t *testing.T) {
	r := newPortRegistry()
	rec := &handleInfoRecord{portName: "/dev/ttyACM0", handle: 1, fd: 7}
	r.add(rec)

	got, ok := r.get(1)
	require.True(t, ok)
	require.Equal(t, 7, got.fd)
	require.Equal(t, 1, r.count())

	r.remove(1)
	_, ok = r.get(1)
	require.False(t, ok)
	require.Equal(t, 0, r.count())
}

func TestRegistryWithRecordUnknownHandle(t *testing.T) {
	r := newPortRegistry()
	err := r.withRecord(99, func(*handleInfoRecord) error { return nil })
	require.Error(t, err)

	var pe *PortError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindUnknownHandle, pe.Kind)
}

func TestRegistryFindByToken(t *testing.T) {
	r := newPortRegistry()
	tok := r.newToken()
	r.add(&handleInfoRecord{handle: 1, hasData: true, dataToken: tok})

	rec, found, wasData := r.findByToken(tok)
	require.True(t, found)
	require.True(t, wasData)
	require.Equal(t, Handle(1), rec.handle)

	_, found, _ = r.findByToken(tok + 1)
	require.False(t, found)
}

func TestRegistryNewTokenIsUnique(t *testing.T) {
	r := newPortRegistry()
	a := r.newToken()
	b := r.newToken()
	require.NotEqual(t, a, b)
}
