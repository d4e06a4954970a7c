package firestoremock

import (
	"sync"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/dispatch"
	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/query"
	"github.com/restic/firestoremock/internal/stats"
	"github.com/restic/firestoremock/internal/status"
	"github.com/restic/firestoremock/internal/store"
	"github.com/restic/firestoremock/internal/txn"
	"github.com/restic/firestoremock/internal/value"
)

// Default path-serialization components, per §6.
const (
	DefaultProjectID  = "default-project"
	DefaultDatabaseID = "(default)"
	DefaultLocation   = "nam5"
	DefaultNamespace  = "(default)"
)

// ControllerOptions configures path serialization for references returned
// by a Controller; the zero value is replaced field-by-field with the
// defaults above.
type ControllerOptions struct {
	ProjectID  string
	DatabaseID string
	Location   string
	Namespace  string
}

func (o ControllerOptions) withDefaults() ControllerOptions {
	if o.ProjectID == "" {
		o.ProjectID = DefaultProjectID
	}
	if o.DatabaseID == "" {
		o.DatabaseID = DefaultDatabaseID
	}
	if o.Location == "" {
		o.Location = DefaultLocation
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	return o
}

// DocumentsPrefix returns the "projects/{p}/databases/{d}/documents" root
// that every reference path is relative to.
func (o ControllerOptions) DocumentsPrefix() string {
	return "projects/" + o.ProjectID + "/databases/" + o.DatabaseID + "/documents"
}

// Controller is the mock's single entry point: it owns the structural
// store, the transaction registry, and change/trigger dispatch, replacing
// the teacher domain's shared mutable database-pool singleton with an
// explicit, caller-owned object (§9 Design Notes).
type Controller struct {
	Options ControllerOptions

	store     *store.Store
	clock     clock.Source
	engine    *commit.Engine
	txns      *txn.Manager
	scheduler *dispatch.Scheduler
	dispatch  *dispatch.Dispatcher

	mu     sync.Mutex
	closed bool
}

// NewController returns a Controller backed by the system clock.
func NewController(opts ControllerOptions) *Controller {
	return NewControllerWithClock(opts, clock.System())
}

// NewControllerWithClock returns a Controller stamping every commit with
// times from src, for deterministic tests (§4.9).
func NewControllerWithClock(opts ControllerOptions, src clock.Source) *Controller {
	s := store.New()
	e := commit.New(s, src)
	sched := dispatch.NewScheduler()
	return &Controller{
		Options:   opts.withDefaults(),
		store:     s,
		clock:     src,
		engine:    e,
		txns:      txn.NewManager(s, e, src),
		scheduler: sched,
		dispatch:  dispatch.New(s, sched),
	}
}

// Close releases the Controller's scheduler goroutine. Commit, Get, Query,
// BeginTransaction, Reset and Clear attempted after Close return
// Unavailable; Watch, OnWrite and Transaction do not check.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.scheduler.Close()
	return nil
}

func (c *Controller) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return status.Unavailable("controller is closed")
	}
	return nil
}

// Clock returns the time source driving this controller's commits.
func (c *Controller) Clock() clock.Source { return c.clock }

// Stats returns a snapshot of the operational counters tracked across
// every commit.
func (c *Controller) Stats() stats.Snapshot { return c.store.Stats.Snapshot() }

// Commit applies writes against the store, dispatching listener and
// trigger notifications for any resulting changes.
func (c *Controller) Commit(writes []commit.Write, mode commit.Mode) (*commit.Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	result, err := c.engine.Commit(writes, mode)
	if err != nil {
		return nil, err
	}
	c.dispatch.Dispatch(result.Changed(), result.ServerTime)
	return result, nil
}

// Get resolves a single document path at current state (or, if readTime is
// non-nil, at that historical snapshot).
func (c *Controller) Get(path fspath.Path, readTime *value.Timestamp) (*document.Meta, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.store.Lock()
	defer c.store.Unlock()

	now := c.clock.Now()
	var st document.State
	if md, ok := c.store.LookupDocument(path); ok {
		if readTime != nil {
			st = md.SnapshotAt(now, *readTime, true)
		} else {
			st = md.Current()
		}
	}
	if st.Exists {
		c.store.Stats.Read()
	} else {
		c.store.Stats.NoopRead()
	}
	parent, _ := path.Parent()
	return document.FromState(parent.String(), path.String(), path.Last(), now, st), nil
}

// Query resolves a DocumentQuery's scope and visibility, applying
// predicate to every visible, existing candidate (§4.7).
func (c *Controller) Query(q query.DocumentQuery, predicate query.Predicate) ([]*document.Meta, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.store.Lock()
	defer c.store.Unlock()
	docs, err := query.Evaluate(c.store, q, c.clock.Now(), predicate)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		c.store.Stats.NoopRead()
	} else {
		for range docs {
			c.store.Stats.Read()
		}
	}
	return docs, nil
}

// BeginTransaction starts a new transaction (§4.6).
func (c *Controller) BeginTransaction(opts txn.BeginOptions) (*txn.Transaction, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.txns.Begin(opts)
}

// Transaction returns the Manager backing BeginTransaction, for callers
// that need direct access to Get/Commit/Rollback/Fetch/Flush.
func (c *Controller) Transaction() *txn.Manager { return c.txns }

// Watch registers a change listener, delivering an initial event followed
// by a delta event after every commit that produces changes.
func (c *Controller) Watch(cb dispatch.Listener) (dispose func()) {
	return c.dispatch.RegisterListener(cb)
}

// OnWrite registers a trigger matched against routeTemplate after every
// commit (§4.8).
func (c *Controller) OnWrite(routeTemplate string, cb dispatch.TriggerCallback) (dispose func()) {
	return c.dispatch.RegisterTrigger(routeTemplate, cb)
}

// Reset clears every document and zeros the version counter and
// operational statistics.
func (c *Controller) Reset() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.store.Lock()
	defer c.store.Unlock()
	c.store.Reset()
	return nil
}

// Clear clears every document and zeros the version counter, but
// preserves operational statistics (§4.3/§9 Open Questions).
func (c *Controller) Clear() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.store.Lock()
	defer c.store.Unlock()
	c.store.Clear()
	return nil
}

// ReferencePath serializes path relative to this controller's documents
// root, per §6.
func (c *Controller) ReferencePath(path fspath.Path) string {
	return c.Options.DocumentsPrefix() + "/" + path.String()
}
