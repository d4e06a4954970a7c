package txn

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/store"
)

// MaxLifetime is the maximum total duration a transaction may remain
// active before a flush forcibly rolls it back (§4.6).
const MaxLifetime = 270 * time.Second

// MaxIdle is the maximum duration since a transaction's last touch before
// a flush forcibly rolls it back (§4.6).
const MaxIdle = 60 * time.Second

// RetryRetention is how long an Aborted transaction remains in the
// registry after completion so that a subsequent Begin carrying its key as
// a retry_transaction token can still find it (§4.6). Past this age the
// entry can no longer serve that purpose and Flush evicts it.
const RetryRetention = MaxIdle

// Manager owns the registry of in-flight transactions layered over a
// structural store and commit engine.
type Manager struct {
	store  *store.Store
	engine *commit.Engine
	clock  clock.Source

	registry *xsync.MapOf[string, *Transaction]
}

// NewManager returns a Manager driving commits through engine against
// store, stamping transaction lifecycle times from c.
func NewManager(s *store.Store, e *commit.Engine, c clock.Source) *Manager {
	return &Manager{
		store:    s,
		engine:   e,
		clock:    c,
		registry: xsync.NewMapOf[string, *Transaction](),
	}
}

// Begin starts a new transaction. A read-write transaction with a
// RetryToken must reference a still-registered, Aborted read-write
// transaction, or InvalidArgument is returned.
func (m *Manager) Begin(opts BeginOptions) (*Transaction, error) {
	now := m.clock.Now()

	if opts.RetryToken != "" {
		if opts.Mode != ReadWrite {
			return nil, status.InvalidArgument("retry_transaction is only valid for read-write transactions")
		}
		prev, ok := m.registry.Load(opts.RetryToken)
		if !ok || prev.State() != Aborted || prev.mode != ReadWrite {
			return nil, status.InvalidArgument("retry_transaction does not reference a known aborted read-write transaction")
		}
	}

	readTime := now
	if opts.Mode == ReadOnly && opts.ReadTime != nil {
		readTime = *opts.ReadTime
	}

	id, key, err := newID()
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		ID:        id,
		Key:       key,
		mode:      opts.Mode,
		readTime:  readTime,
		createdAt: now,
		lastTouch: now,
		state:     Active,
	}
	m.registry.Store(key, txn)
	return txn, nil
}

// Fetch returns the transaction registered under key, touching its idle
// timer, or InvalidArgument if unknown. It does not check the state: an
// Aborted transaction still held for retry is returned as well.
func (m *Manager) Fetch(key string) (*Transaction, error) {
	txn, ok := m.registry.Load(key)
	if !ok {
		return nil, status.InvalidArgument("unknown transaction")
	}
	txn.touch(m.clock.Now())
	return txn, nil
}

// Get resolves path under the transaction's pinned snapshot and records it
// in the transaction's read set for later conflict detection.
func (m *Manager) Get(txn *Transaction, path fspath.Path) (*document.Meta, error) {
	if txn.State() != Active {
		return nil, status.FailedPrecondition("transaction is no longer active")
	}
	txn.touch(m.clock.Now())

	m.store.Lock()
	defer m.store.Unlock()

	now := m.clock.Now()
	var st document.State
	if md, ok := m.store.LookupDocument(path); ok {
		st = md.SnapshotAt(now, txn.ReadTime(), true)
	}
	txn.recordRead(path.String(), st.UpdateTime)

	meta := document.FromState(parentOf(path), path.String(), path.Last(), now, st)
	if st.Exists {
		m.store.Stats.Read()
	} else {
		m.store.Stats.NoopRead()
	}
	return meta, nil
}

// Commit validates snapshot isolation against the transaction's read set
// and, if writes are present, applies them atomically. Read-only
// transactions reject any writes with InvalidArgument. A read-write
// transaction that performs no writes commits as a no-op without
// consulting its read set, since it has nothing left to protect (§4.6).
// Any failure transitions the transaction to Aborted, retaining it in the
// registry so a retry_transaction token can reference it; a successful
// commit removes it from the registry immediately.
func (m *Manager) Commit(txn *Transaction, writes []commit.Write) (*commit.Result, error) {
	if txn.State() != Active {
		return nil, status.Aborted("transaction is already completed")
	}
	if txn.mode == ReadOnly && len(writes) > 0 {
		txn.transition(Aborted, m.clock.Now())
		return nil, status.InvalidArgument("read-only transactions cannot perform writes")
	}

	now := m.clock.Now()

	if len(writes) == 0 {
		txn.transition(Committed, now)
		m.registry.Delete(txn.Key)
		return &commit.Result{ServerTime: now}, nil
	}

	m.store.Lock()
	conflictErr := m.checkConflicts(txn)
	m.store.Unlock()
	if conflictErr != nil {
		txn.transition(Aborted, now)
		return nil, conflictErr
	}

	result, err := m.engine.Commit(writes, commit.Atomic)
	if err != nil {
		txn.transition(Aborted, m.clock.Now())
		return nil, err
	}
	txn.transition(Committed, m.clock.Now())
	m.registry.Delete(txn.Key)
	return result, nil
}

// checkConflicts reports Aborted if any path in the transaction's read set
// has been updated since the transaction's read_time. The caller must
// hold the store lock.
func (m *Manager) checkConflicts(txn *Transaction) error {
	for raw := range txn.readSetSnapshot() {
		path, err := fspath.Assert(raw, fspath.KindDocument)
		if err != nil {
			continue
		}
		md, ok := m.store.LookupDocument(path)
		if !ok {
			continue
		}
		cur := md.Current()
		if cur.UpdateTime.Compare(txn.ReadTime()) <= 0 {
			continue
		}
		if !cur.Exists {
			return status.Aborted("document %q was deleted after the transaction's read time", raw)
		}
		return status.Aborted("document %q was concurrently updated after the transaction's read time", raw)
	}
	return nil
}

// Rollback transitions the transaction to Aborted, retaining it in the
// registry for RetryRetention so a retry_transaction token can reference
// it.
func (m *Manager) Rollback(txn *Transaction) error {
	txn.transition(Aborted, m.clock.Now())
	return nil
}

// Flush rolls back every Active transaction that has exceeded its maximum
// lifetime or idle duration, and evicts every terminal transaction that
// has aged past RetryRetention, returning the number rolled back.
func (m *Manager) Flush() int {
	now := m.clock.Now()
	rolledBack := 0
	var stale []string
	m.registry.Range(func(key string, txn *Transaction) bool {
		if age, done := txn.completedAge(now); done {
			if age > RetryRetention {
				stale = append(stale, key)
			}
			return true
		}
		if clock.Since(txn.createdAt, now) > MaxLifetime || clock.Since(txn.lastTouch, now) > MaxIdle {
			if txn.transition(Aborted, now) {
				rolledBack++
			}
		}
		return true
	})
	for _, key := range stale {
		m.registry.Delete(key)
	}
	return rolledBack
}

func parentOf(p fspath.Path) string {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent.String()
}
