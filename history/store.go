package history

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/openapeshop/apecrunch/logger"
)

// Store owns the in-memory history container and its file. It starts a fresh
// session when opened and only ever appends to that session; loaded sessions
// and their entries are never mutated. Store is not safe for concurrent use;
// the calculator's read-eval loop is its single caller.
type Store struct {
	path      string
	container *Container
	current   *Session
	saveEvery int
	pending   int
}

// Option configures a Store.
type Option func(*Store)

// SaveEvery makes the store checkpoint to disk after every n appended
// entries. n <= 0 disables checkpointing; the caller saves explicitly.
func SaveEvery(n int) Option {
	return func(s *Store) { s.saveEvery = n }
}

// Open loads the container at path and starts a fresh session in it. A
// missing file is a first run and is not an error. Any other load failure is
// returned as the LoadError, and the Store proceeds over an empty container
// so the application stays usable; the damaged file is left in place until
// the next save replaces it.
func Open(path string, opts ...Option) (*Store, *LoadError) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	c, lerr := load(path)
	if lerr != nil {
		if lerr.Kind == LoadIO && errors.Is(lerr.Err, fs.ErrNotExist) {
			lerr = nil
		} else {
			logger.L.Warn("history unreadable, starting empty", "path", path, "error", lerr)
		}
		c = NewContainer()
	}
	s.container = c
	s.current = newSession()
	s.container.Sessions = append(s.container.Sessions, s.current)
	return s, lerr
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// Append adds an entry to the current session and checkpoints to disk when
// the configured interval is reached. A checkpoint failure is returned but
// leaves the appended entry in memory.
func (s *Store) Append(e Entry) *SaveError {
	s.current.Entries = append(s.current.Entries, e)
	s.pending++
	if s.saveEvery > 0 && s.pending >= s.saveEvery {
		return s.Save()
	}
	return nil
}

// Save writes the container to its file: serialized, compressed, version
// prefixed, and renamed into place so a crash mid-write cannot damage the
// previous file.
func (s *Store) Save() *SaveError {
	data, err := encode(s.container)
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &SaveError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &SaveError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &SaveError{Path: s.path, Err: err}
	}
	s.pending = 0
	logger.L.Debug("history saved", "path", s.path, "sessions", len(s.container.Sessions))
	return nil
}

// Sessions returns every session in chronological order, the current one
// last.
func (s *Store) Sessions() []*Session {
	return append([]*Session(nil), s.container.Sessions...)
}

// Current returns the session started by this store.
func (s *Store) Current() *Session {
	return s.current
}

// Entries returns the entries of one session, oldest first.
func (s *Store) Entries(sessionID uuid.UUID) ([]Entry, bool) {
	for _, sess := range s.container.Sessions {
		if sess.ID == sessionID {
			return append([]Entry(nil), sess.Entries...), true
		}
	}
	return nil, false
}

// AllEntries returns every entry of every session in chronological order.
func (s *Store) AllEntries() []Entry {
	var all []Entry
	for _, sess := range s.container.Sessions {
		all = append(all, sess.Entries...)
	}
	return all
}

// Lookup finds an entry by identifier in any session.
func (s *Store) Lookup(entryID uuid.UUID) (Entry, bool) {
	for _, sess := range s.container.Sessions {
		for _, e := range sess.Entries {
			if e.ID == entryID {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Vars returns the persisted variable snapshot.
func (s *Store) Vars() []VarRecord {
	return append([]VarRecord(nil), s.container.Vars...)
}

// SetVars replaces the persisted variable snapshot. Callers push the live
// table's snapshot here before saving.
func (s *Store) SetVars(vars []VarRecord) {
	s.container.Vars = append([]VarRecord(nil), vars...)
}
