// Package stats implements the operational and structural counters of
// §4.3/§4.5/§8: reads/writes/deletes and their no-op variants, plus a
// structural-stats cache invalidated by the structural store.
package stats

import "sync/atomic"

// Counters holds the operational counters. All fields are accessed
// atomically so concurrent commits can update them without a lock.
type Counters struct {
	writes     atomic.Int64
	noopWrites atomic.Int64
	deletes    atomic.Int64
	noopDelete atomic.Int64
	reads      atomic.Int64
	noopReads  atomic.Int64
}

// Snapshot is an immutable copy of Counters' values at a point in time.
type Snapshot struct {
	Writes        int64
	NoopWrites    int64
	Deletes       int64
	NoopDeletes   int64
	Reads         int64
	NoopReads     int64
}

func (c *Counters) Write()      { c.writes.Add(1) }
func (c *Counters) NoopWrite()  { c.noopWrites.Add(1) }
func (c *Counters) Delete()     { c.deletes.Add(1) }
func (c *Counters) NoopDelete() { c.noopDelete.Add(1) }
func (c *Counters) Read()       { c.reads.Add(1) }
func (c *Counters) NoopRead()   { c.noopReads.Add(1) }

// Snapshot returns an immutable copy of the current counters.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Writes:      c.writes.Load(),
		NoopWrites:  c.noopWrites.Load(),
		Deletes:     c.deletes.Load(),
		NoopDeletes: c.noopDelete.Load(),
		Reads:       c.reads.Load(),
		NoopReads:   c.noopReads.Load(),
	}
}

// Reset zeros every counter, used by a full database reset().
func (c *Counters) Reset() {
	c.writes.Store(0)
	c.noopWrites.Store(0)
	c.deletes.Store(0)
	c.noopDelete.Store(0)
	c.reads.Store(0)
	c.noopReads.Store(0)
}

// Structural holds the active/leaf counters tracked by a single
// collection node. Invalidation of the aggregate totals is handled by
// StructuralCache.
type Structural struct {
	ActiveDocCount int
	LeafCount      int
}

// StructuralCache aggregates per-node Structural counts, recomputed only
// when Invalidate has been called since the last Snapshot.
type StructuralCache struct {
	dirty    atomic.Bool
	cached   atomic.Pointer[aggregateSnapshot]
}

type aggregateSnapshot struct {
	totalActive int
	totalLeaf   int
}

// NewStructuralCache returns a cache that starts dirty, forcing the first
// Snapshot call to recompute.
func NewStructuralCache() *StructuralCache {
	c := &StructuralCache{}
	c.dirty.Store(true)
	return c
}

// Invalidate marks the cache dirty; the next Snapshot call recomputes.
func (c *StructuralCache) Invalidate() { c.dirty.Store(true) }

// Snapshot returns cached totals, recomputing via compute if the cache is
// dirty.
func (c *StructuralCache) Snapshot(compute func() (activeTotal, leafTotal int)) (activeTotal, leafTotal int) {
	if !c.dirty.Load() {
		if snap := c.cached.Load(); snap != nil {
			return snap.totalActive, snap.totalLeaf
		}
	}
	a, l := compute()
	c.cached.Store(&aggregateSnapshot{totalActive: a, totalLeaf: l})
	c.dirty.Store(false)
	return a, l
}
