// Package clock implements the Time Source (§4.9): an abstract monotonic
// server clock that can run on the system clock, a constant value, a
// real-time offset from a fixed root, or a caller-supplied generator.
package clock

import (
	"sync"
	"time"

	"github.com/restic/firestoremock/internal/value"
)

// Source produces server timestamps.
type Source interface {
	// Now returns the current server time.
	Now() value.Timestamp
}

func fromTime(t time.Time) value.Timestamp {
	return value.Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func toTime(ts value.Timestamp) time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// System returns a Source backed by the real wall clock.
func System() Source { return systemSource{} }

type systemSource struct{}

func (systemSource) Now() value.Timestamp { return fromTime(time.Now()) }

// Constant returns a Source that always reports the same timestamp, until
// reconfigured.
func Constant(ts value.Timestamp) *ConstantSource {
	return &ConstantSource{ts: ts}
}

// ConstantSource is a Source fixed at a single instant, mutable via Set.
type ConstantSource struct {
	mu sync.Mutex
	ts value.Timestamp
}

func (c *ConstantSource) Now() value.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ts
}

// Set reconfigures the constant timestamp.
func (c *ConstantSource) Set(ts value.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ts = ts
}

// Offset returns a Source that reports real elapsed wall-clock time since
// configuration, relative to a root timestamp. Advance shifts the root
// forward independent of real elapsed time.
type Offset struct {
	mu      sync.Mutex
	root    time.Time // wall-clock instant the offset was established
	base    value.Timestamp
	advance time.Duration
}

// NewOffset creates an Offset source anchored at root, reporting root at
// the moment of construction and advancing in lockstep with the wall
// clock thereafter.
func NewOffset(root value.Timestamp) *Offset {
	return &Offset{root: time.Now(), base: root}
}

func (o *Offset) Now() value.Timestamp {
	o.mu.Lock()
	defer o.mu.Unlock()
	elapsed := time.Since(o.root) + o.advance
	return fromTime(toTime(o.base).Add(elapsed))
}

// Advance shifts the offset forward by d relative to the last reported
// time.
func (o *Offset) Advance(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advance += d
}

// Func adapts a caller-supplied generator to a Source.
type Func func() value.Timestamp

func (f Func) Now() value.Timestamp { return f() }

// Since returns the duration between two server timestamps, b - a.
func Since(a, b value.Timestamp) time.Duration {
	return toTime(b).Sub(toTime(a))
}
