package document_test

import (
	"testing"

	"github.com/restic/firestoremock/internal/document"
	rtest "github.com/restic/firestoremock/internal/test"
	"github.com/restic/firestoremock/internal/value"
)

func TestStateCloneIsIndependentOfSource(t *testing.T) {
	src := document.State{
		Exists: true,
		Data:   map[string]value.Value{"n": value.Int(1)},
	}
	cloned := src.Clone()
	cloned.Data["n"] = value.Int(2)

	rtest.Equals(t, int64(1), src.Data["n"].Int())
	rtest.Equals(t, int64(2), cloned.Data["n"].Int())
}

func TestMetaDataNilWhenNotExists(t *testing.T) {
	m := document.NewNonExistent("users", "users/ada", "ada", value.Timestamp{Seconds: 1})
	rtest.Assert(t, m.Data() == nil, "expected Data() to be nil for a non-existent document")
	rtest.Assert(t, m.CloneData() == nil, "expected CloneData() to be nil for a non-existent document")
}

func TestMetaCloneDataIsOwned(t *testing.T) {
	st := document.State{Exists: true, Data: map[string]value.Value{"n": value.Int(1)}}
	m := document.FromState("users", "users/ada", "ada", value.Timestamp{Seconds: 1}, st)

	clone := m.CloneData()
	clone["n"] = value.Int(99)

	rtest.Equals(t, int64(1), m.Data()["n"].Int())
}

func TestFromStatePopulatesIdentity(t *testing.T) {
	st := document.State{Exists: true, Version: 3, Data: map[string]value.Value{}}
	m := document.FromState("users", "users/ada", "ada", value.Timestamp{Seconds: 7}, st)

	rtest.Equals(t, "users", m.Parent)
	rtest.Equals(t, "users/ada", m.Path)
	rtest.Equals(t, "ada", m.ID)
	rtest.Equals(t, int64(7), m.ServerTime.Seconds)
	rtest.Equals(t, uint64(3), m.Version)
}
