package core

import (
	"time"

	"github.com/google/uuid"
)

// InvocationRecord is an immutable snapshot of one routed call.
type InvocationRecord struct {
	Seq      uint64
	Member   MemberID
	Receiver any
	Args     []any
	Scope    uuid.UUID
	At       time.Time
}

// invocationRecorder is the append-only call log of a scope.
type invocationRecorder struct {
	scope uuid.UUID
	now   func() time.Time
	log   []InvocationRecord
	seq   uint64
}

func newInvocationRecorder(scope uuid.UUID, now func() time.Time) *invocationRecorder {
	return &invocationRecorder{scope: scope, now: now}
}

func (r *invocationRecorder) record(member MemberID, recv any, args []any) InvocationRecord {
	r.seq++

	snapshot := make([]any, len(args))
	copy(snapshot, args)

	rec := InvocationRecord{
		Seq:      r.seq,
		Member:   member,
		Receiver: recv,
		Args:     snapshot,
		Scope:    r.scope,
		At:       r.now(),
	}
	r.log = append(r.log, rec)

	return rec
}

func (r *invocationRecorder) queryCount(member MemberID) int {
	return r.queryMatching(member, nil)
}

func (r *invocationRecorder) queryMatching(member MemberID, matcher ArgsMatcher) int {
	count := 0

	for _, rec := range r.log {
		if rec.Member == member && matches(matcher, rec.Args) {
			count++
		}
	}

	return count
}

// records returns the calls of member, or of every member when member is the zero value.
func (r *invocationRecorder) records(member MemberID) []InvocationRecord {
	var out []InvocationRecord

	for _, rec := range r.log {
		if member == (MemberID{}) || rec.Member == member {
			out = append(out, rec)
		}
	}

	return out
}

func (r *invocationRecorder) classRecords(class ClassID) []InvocationRecord {
	var out []InvocationRecord

	for _, rec := range r.log {
		if rec.Member.Class == class {
			out = append(out, rec)
		}
	}

	return out
}
