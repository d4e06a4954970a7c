package firestoremock_test

import (
	"sync"
	"testing"
	"time"

	fsmock "github.com/restic/firestoremock"
	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/dispatch"
	"github.com/restic/firestoremock/internal/fspath"
	rtest "github.com/restic/firestoremock/internal/test"
	"github.com/restic/firestoremock/internal/value"
)

func TestControllerCommitAndGet(t *testing.T) {
	src := clock.Constant(value.Timestamp{Seconds: 100})
	ctl := fsmock.NewControllerWithClock(fsmock.ControllerOptions{}, src)
	defer ctl.Close()

	path, err := fspath.Assert("users/ada", fspath.KindDocument)
	rtest.OK(t, err)

	batch := fsmock.NewWriteBatch().Set(path, map[string]value.Value{"born": value.Int(1815)}, nil)
	_, err = ctl.Commit(batch.Writes(), commit.Atomic)
	rtest.OK(t, err)

	doc, err := ctl.Get(path, nil)
	rtest.OK(t, err)
	rtest.Assert(t, doc.Exists, "expected document to exist after commit")
	rtest.Equals(t, int64(1815), doc.Data()["born"].Int())
}

func TestControllerReferencePathUsesDefaults(t *testing.T) {
	ctl := fsmock.NewController(fsmock.ControllerOptions{})
	defer ctl.Close()

	path, err := fspath.Assert("users/ada", fspath.KindDocument)
	rtest.OK(t, err)

	want := "projects/default-project/databases/(default)/documents/users/ada"
	rtest.Equals(t, want, ctl.ReferencePath(path))
}

func TestControllerCloseRejectsFurtherCommits(t *testing.T) {
	ctl := fsmock.NewController(fsmock.ControllerOptions{})
	rtest.OK(t, ctl.Close())

	path, err := fspath.Assert("users/ada", fspath.KindDocument)
	rtest.OK(t, err)

	batch := fsmock.NewWriteBatch().Set(path, map[string]value.Value{"x": value.Int(1)}, nil)
	_, err = ctl.Commit(batch.Writes(), commit.Atomic)
	rtest.Assert(t, err != nil, "expected Commit after Close to fail")
}

func TestControllerWatchReceivesDelta(t *testing.T) {
	ctl := fsmock.NewController(fsmock.ControllerOptions{})
	defer ctl.Close()

	path, err := fspath.Assert("users/ada", fspath.KindDocument)
	rtest.OK(t, err)

	var mu sync.Mutex
	var events int
	dispose := ctl.Watch(func(ev *dispatch.ChangeEvent) {
		mu.Lock()
		events++
		mu.Unlock()
	})
	defer dispose()

	batch := fsmock.NewWriteBatch().Set(path, map[string]value.Value{"x": value.Int(1)}, nil)
	_, err = ctl.Commit(batch.Writes(), commit.Atomic)
	rtest.OK(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := events
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected an initial event plus a delta event after the commit")
		}
		time.Sleep(time.Millisecond)
	}
}
