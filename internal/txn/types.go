// Package txn implements the Transaction Manager (§4.6): snapshot-isolated
// read-write and read-only transactions layered over the structural store
// and the commit engine, with idle/lifetime timeouts and retry linking.
package txn

import (
	"github.com/restic/firestoremock/internal/value"
)

// Mode selects whether a transaction may perform writes.
type Mode int

const (
	ReadWrite Mode = iota
	ReadOnly
)

// State is a transaction's lifecycle stage. Committed and Aborted are
// terminal.
type State int

const (
	Active State = iota
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// BeginOptions configures a new transaction. The zero value is a
// read-write transaction with no retry token.
type BeginOptions struct {
	Mode Mode

	// ReadTime pins a read-only transaction's snapshot; ignored for
	// read-write transactions, which always pin the current server time.
	ReadTime *value.Timestamp

	// RetryToken, if set, must reference a previous Aborted read-write
	// transaction still in the registry.
	RetryToken string
}
