// Package dispatch implements Change & Trigger Dispatch (§4.8): change
// watcher delivery and route-matched trigger invocation, scheduled through
// an explicit microtask/delayed-queue Scheduler rather than the teacher
// domain's coroutine-based event loop (§9 Design Notes).
package dispatch

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/restic/firestoremock/internal/debug"
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/store"
	"github.com/restic/firestoremock/internal/value"
)

// Listener receives every change event: one initial event at registration
// and one delta event per commit that produces changes.
type Listener func(*ChangeEvent)

// TriggerCallback receives one TriggerEvent per matching, coalesced
// document change following a commit.
type TriggerCallback func(TriggerEvent)

type registeredListener struct {
	id uuid.UUID
	cb Listener
}

type registeredTrigger struct {
	id   uuid.UUID
	tmpl fspath.Template
	cb   TriggerCallback
}

// Dispatcher owns the set of registered listeners/triggers and schedules
// their delivery after each commit.
type Dispatcher struct {
	store     *store.Store
	scheduler *Scheduler

	mu        sync.Mutex
	listeners []registeredListener
	triggers  []registeredTrigger
}

// New returns a Dispatcher delivering events for s's documents, scheduled
// through sched.
func New(s *store.Store, sched *Scheduler) *Dispatcher {
	return &Dispatcher{store: s, scheduler: sched}
}

// RegisterListener adds cb and schedules its initial event. The returned
// disposer is idempotent and prevents any not-yet-delivered event from
// reaching cb.
func (d *Dispatcher) RegisterListener(cb Listener) (dispose func()) {
	id := uuid.New()
	d.mu.Lock()
	d.listeners = append(d.listeners, registeredListener{id: id, cb: cb})
	d.mu.Unlock()

	d.store.Lock()
	docs := d.store.ExistingDocuments()
	snapshots := make([]struct {
		path fspath.Path
		st   document.State
	}, len(docs))
	for i, md := range docs {
		snapshots[i].path = md.Path()
		snapshots[i].st = md.Current()
	}
	d.store.Unlock()

	event := newChangeEvent(value.Timestamp{}, true, func() map[string]*document.Meta {
		out := make(map[string]*document.Meta, len(snapshots))
		for _, s := range snapshots {
			out[s.path.String()] = document.FromState(parentOf(s.path), s.path.String(), s.path.Last(), s.st.UpdateTime, s.st)
		}
		return out
	})

	d.scheduler.ScheduleMicrotask(func() {
		if !d.hasListener(id) {
			return
		}
		safeCall(func() { cb(event) })
	})

	return func() { d.removeListener(id) }
}

// RegisterTrigger parses routeTemplate and adds cb, invoked once per
// matching document change after every commit.
func (d *Dispatcher) RegisterTrigger(routeTemplate string, cb TriggerCallback) (dispose func()) {
	id := uuid.New()
	tmpl := fspath.ParseTemplate(routeTemplate)
	d.mu.Lock()
	d.triggers = append(d.triggers, registeredTrigger{id: id, tmpl: tmpl, cb: cb})
	d.mu.Unlock()
	return func() { d.removeTrigger(id) }
}

// Dispatch schedules listener and trigger delivery for one commit's
// changes. changes must be in commit (apply) order.
func (d *Dispatcher) Dispatch(changes []*document.Meta, serverTime value.Timestamp) {
	if len(changes) == 0 {
		return
	}

	d.mu.Lock()
	listeners := append([]registeredListener(nil), d.listeners...)
	d.mu.Unlock()

	event := newChangeEvent(serverTime, false, func() map[string]*document.Meta {
		return coalesce(changes)
	})

	d.scheduler.ScheduleMicrotask(func() {
		debug.Log("dispatching change event to %d listener(s)", len(listeners))
		var g errgroup.Group
		for _, l := range listeners {
			l := l
			if !d.hasListener(l.id) {
				continue
			}
			g.Go(func() error {
				safeCall(func() { l.cb(event) })
				return nil
			})
		}
		_ = g.Wait()
	})

	d.scheduler.ScheduleDelayed(MinTriggerDelay, func() {
		d.dispatchTriggers(changes)
	})
}

func (d *Dispatcher) dispatchTriggers(changes []*document.Meta) {
	coalesced := coalesce(changes)

	d.mu.Lock()
	triggers := append([]registeredTrigger(nil), d.triggers...)
	d.mu.Unlock()

	debug.Log("dispatching %d coalesced change(s) to %d trigger(s)", len(coalesced), len(triggers))

	for _, path := range changeOrder(changes) {
		meta := coalesced[path]
		p, err := fspath.Assert(path, fspath.KindDocument)
		if err != nil {
			continue
		}
		for _, tr := range triggers {
			tr := tr
			params, ok := tr.tmpl.Match(p)
			if !ok {
				continue
			}
			if !d.hasTrigger(tr.id) {
				continue
			}
			d.scheduler.ScheduleMicrotask(func() {
				if !d.hasTrigger(tr.id) {
					return
				}
				safeCall(func() { tr.cb(TriggerEvent{Params: params, Doc: meta}) })
			})
		}
	}
}

// coalesce reduces changes to the last entry seen per path, per §4.8.
func coalesce(changes []*document.Meta) map[string]*document.Meta {
	out := make(map[string]*document.Meta, len(changes))
	for _, m := range changes {
		out[m.Path] = m
	}
	return out
}

// changeOrder returns each distinct path in changes once, in the order of
// its last occurrence, per §4.8's coalescing rule.
func changeOrder(changes []*document.Meta) []string {
	seen := make(map[string]bool, len(changes))
	reversed := make([]string, 0, len(changes))
	for i := len(changes) - 1; i >= 0; i-- {
		path := changes[i].Path
		if seen[path] {
			continue
		}
		seen[path] = true
		reversed = append(reversed, path)
	}
	order := make([]string, len(reversed))
	for i, p := range reversed {
		order[len(reversed)-1-i] = p
	}
	return order
}

func (d *Dispatcher) hasListener(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

func (d *Dispatcher) removeListener(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, l := range d.listeners {
		if l.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) hasTrigger(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, tr := range d.triggers {
		if tr.id == id {
			return true
		}
	}
	return false
}

func (d *Dispatcher) removeTrigger(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, tr := range d.triggers {
		if tr.id == id {
			d.triggers = append(d.triggers[:i], d.triggers[i+1:]...)
			return
		}
	}
}

func parentOf(p fspath.Path) string {
	parent, ok := p.Parent()
	if !ok {
		return ""
	}
	return parent.String()
}

// safeCall isolates one callback invocation: a panicking listener or
// trigger callback is recovered and logged, never propagated to siblings
// or to the commit that produced the event.
func safeCall(f func()) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("recovered panic in dispatch callback: %v", r)
		}
	}()
	f()
}
