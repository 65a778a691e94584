package apecrunch

import (
	"strings"

	"github.com/google/uuid"

	"github.com/openapeshop/apecrunch/history"
	"github.com/openapeshop/apecrunch/logger"
)

// Engine ties the expression engine to history persistence: it evaluates
// input lines against a variable table restored from the history file and
// records each successful calculation as a history entry. Engine is not safe
// for concurrent use.
type Engine struct {
	ctx    *Context
	vars   *VarTable
	store  *history.Store
	places int
}

// Result is the outcome of one successful evaluation.
type Result struct {
	// Value is the computed number. It is nil when the input was blank and
	// nothing was evaluated.
	Value *Number
	// Rendition is the line as recorded in history, e.g. "2+2 = 4".
	Rendition string
	// Entry is the history entry appended for this evaluation.
	Entry history.Entry
}

// NewEngine creates an engine over a history store, rendering results with
// the given number of decimal places. The variable table is restored from the
// store's persisted snapshot; records that no longer satisfy the naming rules
// or number grammar are skipped.
func NewEngine(store *history.Store, places int) *Engine {
	vars := NewVarTable()
	for _, vr := range store.Vars() {
		v, ok := NumberFromTerms(vr.Value.Num, vr.Value.Den, vr.Value.Approx)
		if !ok {
			logger.L.Warn("skipping unreadable persisted variable", "name", vr.Name)
			continue
		}
		if err := vars.Set(vr.Name, v); err != nil {
			logger.L.Warn("skipping persisted variable", "name", vr.Name, "error", err)
		}
	}
	return &Engine{
		ctx:    NewContext(WithVars(vars)),
		vars:   vars,
		store:  store,
		places: places,
	}
}

// Evaluate parses and evaluates one input line. Blank input is a no-op with a
// zero Result and no error. Any lex, parse, or evaluation error is returned
// and leaves the variable table and history unchanged. On success the entry
// is appended to the current history session; assignments additionally store
// into the variable table.
func (e *Engine) Evaluate(input string) (Result, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Result{}, nil
	}
	expr, err := Parse(strings.NewReader(text))
	if err != nil {
		return Result{}, err
	}
	v := e.ctx.Eval(expr)
	if err := e.ctx.Err(); err != nil {
		return Result{}, err
	}
	rendition := text + " = " + v.Decimal(e.places)
	num, den := v.Terms()
	rec := &history.NumberRecord{Num: num, Den: den, Approx: v.Approximate()}
	entry := history.NewEntry(text, rec, rendition)
	e.pushVars()
	if serr := e.store.Append(entry); serr != nil {
		// The entry stays in memory; the next save retries.
		logger.L.Warn("history checkpoint failed", "error", serr)
	}
	return Result{Value: v, Rendition: rendition, Entry: entry}, nil
}

// Sessions returns every history session in chronological order.
func (e *Engine) Sessions() []*history.Session {
	return e.store.Sessions()
}

// Entries returns the entries of one session, oldest first.
func (e *Engine) Entries(sessionID uuid.UUID) ([]history.Entry, bool) {
	return e.store.Entries(sessionID)
}

// AllEntries returns every history entry in chronological order.
func (e *Engine) AllEntries() []history.Entry {
	return e.store.AllEntries()
}

// Reinsert returns the original input text of a history entry, for editing
// and resubmission. The entry itself is never modified.
func (e *Engine) Reinsert(entryID uuid.UUID) (string, error) {
	entry, ok := e.store.Lookup(entryID)
	if !ok {
		return "", &UnknownEntryError{ID: entryID}
	}
	return entry.WithoutEquality(), nil
}

// Variables returns a snapshot of the variable table for display.
func (e *Engine) Variables() map[string]*Number {
	return e.vars.Snapshot()
}

// Close pushes the variable snapshot into the store and saves the history
// file.
func (e *Engine) Close() error {
	e.pushVars()
	if serr := e.store.Save(); serr != nil {
		return serr
	}
	return nil
}

// pushVars writes the variable table into the store's persisted snapshot so
// the next save carries it.
func (e *Engine) pushVars() {
	names := e.vars.Names()
	recs := make([]history.VarRecord, 0, len(names))
	for _, name := range names {
		v, _ := e.vars.Get(name)
		num, den := v.Terms()
		recs = append(recs, history.VarRecord{
			Name:  name,
			Value: history.NumberRecord{Num: num, Den: den, Approx: v.Approximate()},
		})
	}
	e.store.SetVars(recs)
}

// UnknownEntryError is an error from looking up a history entry that does not
// exist.
type UnknownEntryError struct {
	// ID is the identifier that matched no entry.
	ID uuid.UUID
}

func (err *UnknownEntryError) Error() string {
	return "no history entry " + err.ID.String()
}
