package dispatch

import (
	"sync"
	"time"
)

// MinTriggerDelay is the minimum latency between a commit and trigger
// dispatch for that commit, ensuring writes performed by a trigger
// callback are attributed to a later commit (§4.8).
const MinTriggerDelay = 3 * time.Millisecond

// Scheduler is an explicit stand-in for the teacher domain's coroutine
// microtask queue (§9 Design Notes): schedule_microtask runs a callback on
// a dedicated FIFO worker, and schedule_delayed enqueues onto the same
// worker only once at least the given duration has elapsed, so every
// callback still executes one at a time in submission order.
type Scheduler struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
}

// NewScheduler starts the worker goroutine that drains scheduled tasks.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed && len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		f := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		f()
	}
}

// ScheduleMicrotask enqueues f to run next, after every already-queued
// task and before any task scheduled later.
func (s *Scheduler) ScheduleMicrotask(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, f)
	s.cond.Signal()
}

// ScheduleDelayed enqueues f onto the microtask queue once at least delay
// has elapsed, clamped to MinTriggerDelay.
func (s *Scheduler) ScheduleDelayed(delay time.Duration, f func()) {
	if delay < MinTriggerDelay {
		delay = MinTriggerDelay
	}
	time.AfterFunc(delay, func() { s.ScheduleMicrotask(f) })
}

// Close stops the worker after draining whatever is already queued. Tasks
// scheduled after Close are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
}
