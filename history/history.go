// Package history persists calculator sessions and the variable table in a
// versioned, compressed binary container.
//
// The on-disk format is a 4-byte big-endian format version followed by an
// lz4 frame whose contents are a msgpack payload of the variable snapshot and
// the ordered sessions. Loading never crashes on a foreign or damaged file:
// every failure is reported as a LoadError and the Store continues over an
// empty container. Saving writes a temporary sibling file and renames it
// over the target, so an interrupted save leaves the previous container
// intact.
package history

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// NumberRecord is an exact rational result as stored on disk: lowest-term
// numerator and denominator as decimal strings, plus the precision-loss
// flag. Strings keep the round trip exact at any magnitude.
type NumberRecord struct {
	Num    string `msgpack:"num"`
	Den    string `msgpack:"den"`
	Approx bool   `msgpack:"approx"`
}

// VarRecord is one variable in the persisted snapshot of the variable table.
type VarRecord struct {
	Name  string       `msgpack:"name"`
	Value NumberRecord `msgpack:"value"`
}

// Entry is one computed calculation. Entries are immutable after creation.
type Entry struct {
	// ID uniquely identifies the entry across sessions.
	ID uuid.UUID
	// Time is the entry's creation time.
	Time time.Time
	// Input is the original input text, kept verbatim for reinsertion.
	Input string
	// Result is the computed value, or nil when the entry records an error.
	Result *NumberRecord
	// Err is the error message for a failed evaluation, or empty.
	Err string
	// Rendition is the entry as displayed at creation time, e.g. "2+2 = 4".
	// It is rendered once so later settings changes don't rewrite history.
	Rendition string
}

// WithoutEquality returns the entry as typed, without the "= result" tail of
// the rendition, suitable for reinsertion at a prompt.
func (e *Entry) WithoutEquality() string {
	return e.Input
}

// Approximate reports whether the entry's result carries the precision-loss
// flag.
func (e *Entry) Approximate() bool {
	return e.Result != nil && e.Result.Approx
}

// NewEntry creates an entry for an input and its rendition, stamped with a
// random identifier and the current time.
func NewEntry(input string, result *NumberRecord, rendition string) Entry {
	return Entry{
		ID:        uuid.New(),
		Time:      time.Now(),
		Input:     input,
		Result:    result,
		Rendition: rendition,
	}
}

// Session is one run of the calculator, grouping its entries in insertion
// order, which is also chronological order.
type Session struct {
	// ID uniquely identifies the session.
	ID uuid.UUID
	// Start is the session's start time. Sessions are totally ordered by it.
	Start time.Time
	// Entries are the session's entries, oldest first.
	Entries []Entry
}

// newSession starts an empty session now.
func newSession() *Session {
	return &Session{
		ID:    uuid.New(),
		Start: time.Now(),
	}
}

// Container is the in-memory form of the history file: the variable table
// snapshot and every session, ordered by start time.
type Container struct {
	// Vars is the persisted variable table snapshot.
	Vars []VarRecord
	// Sessions holds every session, oldest first.
	Sessions []*Session
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{}
}

// sortSessions orders sessions by start time regardless of on-disk order.
func (c *Container) sortSessions() {
	sort.SliceStable(c.Sessions, func(i, j int) bool {
		return c.Sessions[i].Start.Before(c.Sessions[j].Start)
	})
}
