package clock_test

import (
	"testing"
	"time"

	"github.com/restic/firestoremock/internal/clock"
	rtest "github.com/restic/firestoremock/internal/test"
	"github.com/restic/firestoremock/internal/value"
)

func TestSystemSourceAdvances(t *testing.T) {
	src := clock.System()
	a := src.Now()
	time.Sleep(2 * time.Millisecond)
	b := src.Now()
	rtest.Assert(t, clock.Since(a, b) > 0, "expected the system clock to advance between two Now() calls")
}

func TestConstantSourceHoldsUntilSet(t *testing.T) {
	src := clock.Constant(value.Timestamp{Seconds: 10})
	rtest.Equals(t, int64(10), src.Now().Seconds)

	src.Set(value.Timestamp{Seconds: 20})
	rtest.Equals(t, int64(20), src.Now().Seconds)
}

func TestOffsetAdvancesWithWallClockAndManualShift(t *testing.T) {
	root := value.Timestamp{Seconds: 1000}
	off := clock.NewOffset(root)

	first := off.Now()
	rtest.Equals(t, root.Seconds, first.Seconds)

	off.Advance(5 * time.Second)
	second := off.Now()
	rtest.Assert(t, second.Seconds >= root.Seconds+5, "expected Advance to shift reported time forward by at least 5s, got %v", second)
}

func TestFuncAdapterDelegatesToGenerator(t *testing.T) {
	calls := 0
	src := clock.Func(func() value.Timestamp {
		calls++
		return value.Timestamp{Seconds: int64(calls)}
	})
	rtest.Equals(t, int64(1), src.Now().Seconds)
	rtest.Equals(t, int64(2), src.Now().Seconds)
}

func TestSinceComputesSignedDuration(t *testing.T) {
	a := value.Timestamp{Seconds: 100}
	b := value.Timestamp{Seconds: 105}
	rtest.Equals(t, 5*time.Second, clock.Since(a, b))
	rtest.Equals(t, -5*time.Second, clock.Since(b, a))
}
