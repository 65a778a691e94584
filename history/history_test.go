package history

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.dat")
}

// writeFile assembles a container file by hand: version header plus an lz4
// frame around the raw payload.
func writeFile(t *testing.T, path string, version uint32, raw []byte) {
	t.Helper()
	var buf bytes.Buffer
	var hdr [headerLen]byte
	binary.BigEndian.PutUint32(hdr[:], version)
	buf.Write(hdr[:])
	zw := lz4.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestOpenMissingFile(t *testing.T) {
	s, lerr := Open(tempPath(t))
	require.Nil(t, lerr, "a missing file is a first run, not an error")
	require.NotNil(t, s)
	assert.Len(t, s.Sessions(), 1, "a fresh session starts on open")
	assert.Empty(t, s.Current().Entries)
	assert.Empty(t, s.Vars())
}

func TestRoundTrip(t *testing.T) {
	path := tempPath(t)
	s, lerr := Open(path)
	require.Nil(t, lerr)

	e1 := NewEntry("1+1", &NumberRecord{Num: "2", Den: "1"}, "1+1 = 2")
	e2 := NewEntry("1/3", &NumberRecord{Num: "1", Den: "3", Approx: true}, "1/3 = 0.333333…")
	require.Nil(t, s.Append(e1))
	require.Nil(t, s.Append(e2))
	s.SetVars([]VarRecord{{Name: "x", Value: NumberRecord{Num: "5", Den: "1"}}})
	require.Nil(t, s.Save())

	r, lerr := Open(path)
	require.Nil(t, lerr)
	sessions := r.Sessions()
	require.Len(t, sessions, 2, "the loaded session plus a fresh one")
	loaded := sessions[0]
	assert.Equal(t, s.Current().ID, loaded.ID)
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, e1.ID, loaded.Entries[0].ID)
	assert.Equal(t, "1+1", loaded.Entries[0].Input)
	assert.Equal(t, "1+1 = 2", loaded.Entries[0].Rendition)
	assert.False(t, loaded.Entries[0].Approximate())
	assert.True(t, loaded.Entries[1].Approximate())
	assert.Equal(t, e2.Result, loaded.Entries[1].Result)

	vars := r.Vars()
	require.Len(t, vars, 1)
	assert.Equal(t, "x", vars[0].Name)
	assert.Equal(t, "5", vars[0].Value.Num)

	got, ok := r.Lookup(e2.ID)
	require.True(t, ok)
	assert.Equal(t, e2.Input, got.Input)
	_, ok = r.Lookup(uuid.New())
	assert.False(t, ok)

	entries, ok := r.Entries(loaded.ID)
	require.True(t, ok)
	assert.Len(t, entries, 2)
	assert.Len(t, r.AllEntries(), 2)
}

func TestEntryTimesSurvive(t *testing.T) {
	path := tempPath(t)
	s, _ := Open(path)
	e := NewEntry("2^10", &NumberRecord{Num: "1024", Den: "1"}, "2^10 = 1024")
	require.Nil(t, s.Append(e))
	require.Nil(t, s.Save())

	r, lerr := Open(path)
	require.Nil(t, lerr)
	got, ok := r.Lookup(e.ID)
	require.True(t, ok)
	assert.True(t, got.Time.Equal(e.Time))
}

func TestLoadCorrupt(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"short", []byte{0, 1}},
		{"garbage-block", append([]byte{0, 0, 0, 2}, []byte("not an lz4 frame")...)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := tempPath(t)
			require.NoError(t, os.WriteFile(path, c.data, 0o644))
			_, lerr := load(path)
			require.NotNil(t, lerr)
			assert.Equal(t, LoadCorrupt, lerr.Kind)
		})
	}
}

func TestLoadCorruptPayload(t *testing.T) {
	path := tempPath(t)
	writeFile(t, path, Version, []byte("this is not msgpack for the payload type"))
	_, lerr := load(path)
	require.NotNil(t, lerr)
	assert.Equal(t, LoadCorrupt, lerr.Kind)
	assert.Equal(t, Version, lerr.Version)
}

func TestLoadIncompatibleVersion(t *testing.T) {
	path := tempPath(t)
	raw, err := msgpack.Marshal(wirePayload{})
	require.NoError(t, err)
	writeFile(t, path, 99, raw)
	_, lerr := load(path)
	require.NotNil(t, lerr)
	assert.Equal(t, LoadIncompatibleVersion, lerr.Kind)
	assert.Equal(t, uint32(99), lerr.Version)
}

func TestLoadV1Migration(t *testing.T) {
	path := tempPath(t)
	id := uuid.New()
	eid := uuid.New()
	raw, err := msgpack.Marshal(wirePayloadV1{
		Sessions: []wireSession{{
			ID:    id.String(),
			Start: time.Now().UnixNano(),
			Entries: []wireEntry{{
				ID:        eid.String(),
				Time:      time.Now().UnixNano(),
				Input:     "6*7",
				Result:    &NumberRecord{Num: "42", Den: "1"},
				Rendition: "6*7 = 42",
			}},
		}},
	})
	require.NoError(t, err)
	writeFile(t, path, versionNoVars, raw)

	c, lerr := load(path)
	require.Nil(t, lerr, "version 1 migrates forward")
	assert.Empty(t, c.Vars, "version 1 has no variable snapshot")
	require.Len(t, c.Sessions, 1)
	assert.Equal(t, id, c.Sessions[0].ID)
	require.Len(t, c.Sessions[0].Entries, 1)
	assert.Equal(t, eid, c.Sessions[0].Entries[0].ID)
	assert.Equal(t, "6*7", c.Sessions[0].Entries[0].Input)
}

func TestOpenCorruptStartsEmpty(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte("junk that is long enough"), 0o644))
	s, lerr := Open(path)
	require.NotNil(t, lerr, "the load failure is reported")
	require.NotNil(t, s, "the store is usable anyway")
	assert.Len(t, s.Sessions(), 1)

	// Saving replaces the damaged file with a good one.
	require.Nil(t, s.Append(NewEntry("1", &NumberRecord{Num: "1", Den: "1"}, "1 = 1")))
	require.Nil(t, s.Save())
	r, lerr := Open(path)
	require.Nil(t, lerr)
	assert.Len(t, r.AllEntries(), 1)
}

func TestSessionsSortedByStart(t *testing.T) {
	path := tempPath(t)
	now := time.Now()
	c := NewContainer()
	newer := &Session{ID: uuid.New(), Start: now}
	older := &Session{ID: uuid.New(), Start: now.Add(-time.Hour)}
	c.Sessions = []*Session{newer, older}
	data, err := encode(c)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, lerr := load(path)
	require.Nil(t, lerr)
	require.Len(t, got.Sessions, 2)
	assert.Equal(t, older.ID, got.Sessions[0].ID)
	assert.Equal(t, newer.ID, got.Sessions[1].ID)
}

func TestSaveEvery(t *testing.T) {
	path := tempPath(t)
	s, lerr := Open(path, SaveEvery(2))
	require.Nil(t, lerr)
	require.Nil(t, s.Append(NewEntry("1", &NumberRecord{Num: "1", Den: "1"}, "1 = 1")))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no checkpoint before the interval")
	require.Nil(t, s.Append(NewEntry("2", &NumberRecord{Num: "2", Den: "1"}, "2 = 2")))
	_, err = os.Stat(path)
	assert.NoError(t, err, "checkpoint at the interval")
}

func TestSaveErrorKeepsContainer(t *testing.T) {
	dir := t.TempDir()
	s, lerr := Open(filepath.Join(dir, "history.dat"))
	require.Nil(t, lerr)
	require.Nil(t, s.Append(NewEntry("1", &NumberRecord{Num: "1", Den: "1"}, "1 = 1")))

	// Point the store at an unwritable path.
	s.path = filepath.Join(dir, "nope", "\x00", "history.dat")
	serr := s.Save()
	require.NotNil(t, serr)
	assert.Len(t, s.AllEntries(), 1, "in-memory state is untouched")
}

func TestLoadErrorMessages(t *testing.T) {
	err := &LoadError{Kind: LoadIncompatibleVersion, Path: "h.dat", Version: 9}
	assert.Contains(t, err.Error(), "incompatible version")
	assert.Contains(t, err.Error(), "9")
	err = &LoadError{Kind: LoadCorrupt, Path: "h.dat"}
	assert.Contains(t, err.Error(), "corrupt")
}
