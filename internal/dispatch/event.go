package dispatch

import (
	"sync"

	"github.com/restic/firestoremock/internal/document"
	"github.com/restic/firestoremock/internal/value"
)

// ChangeEvent is delivered to change watchers: one per commit that
// produces changes, plus one synthetic initial event per registration
// (§4.8). Changes is materialized lazily and only once.
type ChangeEvent struct {
	ServerTime value.Timestamp
	IsInitial  bool

	once    sync.Once
	build   func() map[string]*document.Meta
	changes map[string]*document.Meta
}

// Changes returns the path -> document snapshot for this event, computing
// it on first call.
func (e *ChangeEvent) Changes() map[string]*document.Meta {
	e.once.Do(func() {
		e.changes = e.build()
	})
	return e.changes
}

func newChangeEvent(serverTime value.Timestamp, isInitial bool, build func() map[string]*document.Meta) *ChangeEvent {
	return &ChangeEvent{ServerTime: serverTime, IsInitial: isInitial, build: build}
}

// TriggerEvent is delivered to a matched trigger callback.
type TriggerEvent struct {
	Params map[string]string
	Doc    *document.Meta
}
