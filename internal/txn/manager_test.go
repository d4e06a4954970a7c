package txn_test

import (
	"testing"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/store"
	rtest "github.com/restic/firestoremock/internal/test"
	"github.com/restic/firestoremock/internal/txn"
	"github.com/restic/firestoremock/internal/value"
	"google.golang.org/grpc/codes"
)

func newManager(t *testing.T) (*txn.Manager, *store.Store, *clock.ConstantSource) {
	t.Helper()
	s := store.New()
	src := clock.Constant(value.Timestamp{Seconds: 1000})
	e := commit.New(s, src)
	return txn.NewManager(s, e, src), s, src
}

func docPath(t *testing.T, raw string) fspath.Path {
	t.Helper()
	p, err := fspath.Assert(raw, fspath.KindDocument)
	rtest.OK(t, err)
	return p
}

func TestTransactionEmptyCommitAfterReadSucceeds(t *testing.T) {
	m, _, src := newManager(t)
	p := docPath(t, "users/u1")

	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite})
	rtest.OK(t, err)

	_, err = m.Get(tx, p)
	rtest.OK(t, err)

	src.Set(value.Timestamp{Seconds: 1001})
	_, err = m.Commit(tx, nil)
	rtest.OK(t, err)
}

func TestTransactionAbortsOnExternalUpdate(t *testing.T) {
	m, s, src := newManager(t)
	p := docPath(t, "users/u1")
	eng := commit.New(s, src)

	_, err := eng.Commit([]commit.Write{
		{Path: p, Merge: commit.MergeRoot, Data: map[string]value.Value{"n": value.Int(1)}},
	}, commit.Atomic)
	rtest.OK(t, err)

	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite})
	rtest.OK(t, err)
	_, err = m.Get(tx, p)
	rtest.OK(t, err)

	src.Set(value.Timestamp{Seconds: 1001})
	_, err = eng.Commit([]commit.Write{
		{Path: p, Merge: commit.MergeRoot, Data: map[string]value.Value{"n": value.Int(2)}},
	}, commit.Atomic)
	rtest.OK(t, err)

	_, err = m.Commit(tx, []commit.Write{
		{Path: p, Merge: commit.MergeRoot, Data: map[string]value.Value{"n": value.Int(3)}},
	})
	rtest.Assert(t, err != nil, "expected commit to abort on concurrent update")
	rtest.Assert(t, status.Is(err, codes.Aborted), "expected Aborted, got %v", err)
	rtest.Equals(t, txn.Aborted, tx.State())
}

func TestTransactionReadOnlyRejectsWrites(t *testing.T) {
	m, _, _ := newManager(t)
	p := docPath(t, "users/u1")

	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadOnly})
	rtest.OK(t, err)

	_, err = m.Commit(tx, []commit.Write{{Path: p, Merge: commit.MergeRoot, Data: map[string]value.Value{"n": value.Int(1)}}})
	rtest.Assert(t, err != nil, "expected read-only transaction to reject writes")
	rtest.Assert(t, status.Is(err, codes.InvalidArgument), "expected InvalidArgument, got %v", err)
}

func TestFetchUnknownTransaction(t *testing.T) {
	m, _, _ := newManager(t)
	_, err := m.Fetch("does-not-exist")
	rtest.Assert(t, err != nil, "expected InvalidArgument for unknown transaction")
	rtest.Assert(t, status.Is(err, codes.InvalidArgument), "expected InvalidArgument, got %v", err)
}

func TestTransactionZeroWriteCommitIgnoresReadSetConflict(t *testing.T) {
	m, s, src := newManager(t)
	p := docPath(t, "users/u1")
	eng := commit.New(s, src)

	_, err := eng.Commit([]commit.Write{
		{Path: p, Merge: commit.MergeRoot, Data: map[string]value.Value{"n": value.Int(1)}},
	}, commit.Atomic)
	rtest.OK(t, err)

	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite})
	rtest.OK(t, err)
	_, err = m.Get(tx, p)
	rtest.OK(t, err)

	src.Set(value.Timestamp{Seconds: 1001})
	_, err = eng.Commit([]commit.Write{
		{Path: p, Merge: commit.MergeRoot, Data: map[string]value.Value{"n": value.Int(2)}},
	}, commit.Atomic)
	rtest.OK(t, err)

	_, err = m.Commit(tx, nil)
	rtest.OK(t, err)
	rtest.Equals(t, txn.Committed, tx.State())
}

func TestCommittedTransactionIsRemovedFromRegistry(t *testing.T) {
	m, _, _ := newManager(t)
	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite})
	rtest.OK(t, err)

	_, err = m.Commit(tx, nil)
	rtest.OK(t, err)

	_, err = m.Fetch(tx.Key)
	rtest.Assert(t, err != nil, "expected a committed transaction to be evicted from the registry")
}

func TestRetryTokenMustReferenceAbortedReadWrite(t *testing.T) {
	m, _, _ := newManager(t)
	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite})
	rtest.OK(t, err)

	_, err = m.Begin(txn.BeginOptions{Mode: txn.ReadWrite, RetryToken: tx.Key})
	rtest.Assert(t, err != nil, "expected retry token referencing an active transaction to be rejected")

	rtest.OK(t, m.Rollback(tx))
	retried, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite, RetryToken: tx.Key})
	rtest.OK(t, err)
	rtest.Assert(t, retried.Key != tx.Key, "retry must allocate a fresh transaction id")
}

func TestFlushEvictsLongAbortedTransactions(t *testing.T) {
	m, _, src := newManager(t)
	tx, err := m.Begin(txn.BeginOptions{Mode: txn.ReadWrite})
	rtest.OK(t, err)
	rtest.OK(t, m.Rollback(tx))

	rtest.Equals(t, 0, m.Flush())
	_, err = m.Begin(txn.BeginOptions{Mode: txn.ReadWrite, RetryToken: tx.Key})
	rtest.OK(t, err)

	src.Set(value.Timestamp{Seconds: 1000 + int64(txn.RetryRetention.Seconds()) + 1})
	rtest.Equals(t, 0, m.Flush())

	_, err = m.Begin(txn.BeginOptions{Mode: txn.ReadWrite, RetryToken: tx.Key})
	rtest.Assert(t, err != nil, "expected retry token to no longer resolve after RetryRetention has elapsed")
}
