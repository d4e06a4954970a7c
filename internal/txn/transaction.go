package txn

import (
	"sync"
	"time"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/value"
)

// Transaction is one in-flight read-write or read-only transaction.
type Transaction struct {
	ID  []byte
	Key string

	mode Mode

	readTime  value.Timestamp
	createdAt value.Timestamp

	mu          sync.Mutex
	state       State
	lastTouch   value.Timestamp
	completedAt value.Timestamp            // set when state leaves Active
	readSet     map[string]value.Timestamp // path -> update_time observed
}

// Mode reports whether this transaction may perform writes.
func (t *Transaction) Mode() Mode { return t.mode }

// ReadTime is the pinned snapshot time every read within this transaction
// is resolved against.
func (t *Transaction) ReadTime() value.Timestamp { return t.readTime }

// State returns the transaction's current lifecycle stage.
func (t *Transaction) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// touch records now as the last-activity time, resetting the idle timer.
func (t *Transaction) touch(now value.Timestamp) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastTouch = now
}

// recordRead adds path to the transaction's read set with the update_time
// observed at the moment of the read, used for snapshot-conflict detection
// at commit.
func (t *Transaction) recordRead(path string, updateTime value.Timestamp) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readSet == nil {
		t.readSet = make(map[string]value.Timestamp)
	}
	t.readSet[path] = updateTime
}

// readSetSnapshot returns a copy of the transaction's read set.
func (t *Transaction) readSetSnapshot() map[string]value.Timestamp {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]value.Timestamp, len(t.readSet))
	for k, v := range t.readSet {
		out[k] = v
	}
	return out
}

// transition moves the transaction to a terminal state, returning false if
// it was already terminal. now is recorded as the completion time, used to
// age the transaction out of the registry once it is safe to do so.
func (t *Transaction) transition(to State, now value.Timestamp) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Active {
		return false
	}
	t.state = to
	t.completedAt = now
	return true
}

// completedAge reports how long ago the transaction left the Active state.
// It returns false if the transaction is still Active.
func (t *Transaction) completedAge(now value.Timestamp) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Active {
		return 0, false
	}
	return clock.Since(t.completedAt, now), true
}
