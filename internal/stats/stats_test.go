package stats_test

import (
	"testing"

	"github.com/restic/firestoremock/internal/stats"
	rtest "github.com/restic/firestoremock/internal/test"
)

func TestCountersAccumulatePerKind(t *testing.T) {
	var c stats.Counters
	c.Write()
	c.Write()
	c.NoopWrite()
	c.Delete()
	c.NoopDelete()
	c.NoopDelete()
	c.Read()
	c.NoopRead()
	c.NoopRead()
	c.NoopRead()

	snap := c.Snapshot()
	rtest.Equals(t, int64(2), snap.Writes)
	rtest.Equals(t, int64(1), snap.NoopWrites)
	rtest.Equals(t, int64(1), snap.Deletes)
	rtest.Equals(t, int64(2), snap.NoopDeletes)
	rtest.Equals(t, int64(1), snap.Reads)
	rtest.Equals(t, int64(3), snap.NoopReads)
}

func TestCountersResetZeroesEverything(t *testing.T) {
	var c stats.Counters
	c.Write()
	c.Delete()
	c.Read()
	c.Reset()

	rtest.Equals(t, stats.Snapshot{}, c.Snapshot())
}

func TestStructuralCacheRecomputesOnlyWhenDirty(t *testing.T) {
	cache := stats.NewStructuralCache()

	calls := 0
	compute := func() (int, int) {
		calls++
		return 3, 7
	}

	a, l := cache.Snapshot(compute)
	rtest.Equals(t, 3, a)
	rtest.Equals(t, 7, l)
	rtest.Equals(t, 1, calls)

	// second call without invalidation must hit the cache
	a, l = cache.Snapshot(compute)
	rtest.Equals(t, 3, a)
	rtest.Equals(t, 7, l)
	rtest.Equals(t, 1, calls)

	cache.Invalidate()
	_, _ = cache.Snapshot(compute)
	rtest.Equals(t, 2, calls)
}
