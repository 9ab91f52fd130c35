package serial

import (
	"sync"
)

// handleInfoRecord (HIR, C3) is the per-open-port state the registry owns.
// portName, fd, handle and exclusive are immutable after open;
// register/unregister mutate the listener fields (tokens, flags, looper and
// eventMask) under the registry lock.
type handleInfoRecord struct {
	portName string
	fd       int
	handle   Handle
	exclusive bool

	dataToken  ListenerToken
	eventToken ListenerToken
	hasData    bool
	hasEvent   bool

	looper *looper

	eventMask EventMask
}

// portRegistry (C4) is the synchronized collection of HIRs owned by one
// Manager.
// Every structural mutation (add/remove) and every uniqueness-deciding scan
// takes the same lock; iteration for non-structural lookup still needs the
// lock to avoid observing a partially constructed record.
type portRegistry struct {
	mu      sync.Mutex
	records map[Handle]*handleInfoRecord
	nextTok ListenerToken
}

func newPortRegistry() *portRegistry {
	return &portRegistry{records: make(map[Handle]*handleInfoRecord)}
}

// hasByName reports whether any HIR already exists for portName, regardless
// of that HIR's own exclusivity. An exclusive open must be refused against
// an existing non-exclusive HIR just as much as against an existing
// exclusive one — the uniqueness invariant is "no second HIR for this name
// once one process holds it exclusively," not "no second exclusive HIR."
// Callers must hold no other lock.
func (r *portRegistry) hasByName(portName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.portName == portName {
			return true
		}
	}
	return false
}

func (r *portRegistry) add(rec *handleInfoRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.handle] = rec
}

func (r *portRegistry) remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, h)
}

func (r *portRegistry) get(h Handle) (*handleInfoRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[h]
	return rec, ok
}

// withRecord runs fn with the registry locked and the record for h passed
// in, so structural listener-field mutations are atomic with the lookup
// that located the record.
func (r *portRegistry) withRecord(h Handle, fn func(*handleInfoRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[h]
	if !ok {
		return newError(KindUnknownHandle, "")
	}
	return fn(rec)
}

// findByToken locates the record whose data or event listener currently
// holds tok, returning the record, whether one was found, and whether tok
// matched the data side (true) or the event side (false).
func (r *portRegistry) findByToken(tok ListenerToken) (*handleInfoRecord, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.hasData && rec.dataToken == tok {
			return rec, true, true
		}
		if rec.hasEvent && rec.eventToken == tok {
			return rec, true, false
		}
	}
	return nil, false, false
}

func (r *portRegistry) newToken() ListenerToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTok++
	return r.nextTok
}

func (r *portRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
