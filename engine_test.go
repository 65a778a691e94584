package apecrunch_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openapeshop/apecrunch"
	"github.com/openapeshop/apecrunch/history"
)

func testEngine(t *testing.T) (*apecrunch.Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.dat")
	store, lerr := history.Open(path)
	require.Nil(t, lerr)
	return apecrunch.NewEngine(store, 6), path
}

func TestEngineEvaluate(t *testing.T) {
	eng, _ := testEngine(t)
	r, err := eng.Evaluate("2+2")
	require.NoError(t, err)
	require.NotNil(t, r.Value)
	assert.Equal(t, "2+2 = 4", r.Rendition)
	assert.Equal(t, "2+2", r.Entry.Input)
	assert.False(t, r.Entry.Approximate())

	r, err = eng.Evaluate(" 1/3 ")
	require.NoError(t, err)
	assert.Equal(t, "1/3 = 0.333333…", r.Rendition)
	assert.True(t, r.Entry.Approximate())

	assert.Len(t, eng.AllEntries(), 2)
}

func TestEngineBlankInput(t *testing.T) {
	eng, _ := testEngine(t)
	for _, src := range []string{"", "   ", "\t"} {
		r, err := eng.Evaluate(src)
		require.NoError(t, err)
		assert.Nil(t, r.Value)
	}
	assert.Empty(t, eng.AllEntries(), "blank input appends nothing")
}

func TestEngineErrorsAppendNothing(t *testing.T) {
	eng, _ := testEngine(t)
	for _, src := range []string{"1/0", "2 +", "(1", "$", "sqrt = 2"} {
		_, err := eng.Evaluate(src)
		assert.Error(t, err, "input %q", src)
	}
	assert.Empty(t, eng.AllEntries(), "failed evaluations append nothing")
	assert.Empty(t, eng.Variables())
}

func TestEngineVariables(t *testing.T) {
	eng, path := testEngine(t)
	_, err := eng.Evaluate("x = 3/4")
	require.NoError(t, err)
	r, err := eng.Evaluate("x*4")
	require.NoError(t, err)
	assert.Equal(t, "x*4 = 3", r.Rendition)

	vars := eng.Variables()
	require.Contains(t, vars, "x")

	// The table survives a save/load cycle.
	require.NoError(t, eng.Close())
	store, lerr := history.Open(path)
	require.Nil(t, lerr)
	reloaded := apecrunch.NewEngine(store, 6)
	r, err = reloaded.Evaluate("x+1/4")
	require.NoError(t, err)
	assert.Equal(t, "x+1/4 = 1", r.Rendition)
}

func TestEngineReinsert(t *testing.T) {
	eng, _ := testEngine(t)
	r, err := eng.Evaluate("6*7")
	require.NoError(t, err)
	src, err := eng.Reinsert(r.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "6*7", src)

	_, err = eng.Reinsert(uuid.New())
	var uerr *apecrunch.UnknownEntryError
	require.ErrorAs(t, err, &uerr)
}

func TestEngineRenditionStable(t *testing.T) {
	// An entry keeps the rendition from its creation-time settings even when
	// a later engine renders with different decimal places.
	eng, path := testEngine(t)
	r, err := eng.Evaluate("1/3")
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	store, lerr := history.Open(path)
	require.Nil(t, lerr)
	wide := apecrunch.NewEngine(store, 12)
	entries := wide.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, r.Rendition, entries[0].Rendition)

	r2, err := wide.Evaluate("1/3")
	require.NoError(t, err)
	assert.Equal(t, "1/3 = 0.333333333333…", r2.Rendition)
}

func TestEngineHistoryAcrossSessions(t *testing.T) {
	eng, path := testEngine(t)
	_, err := eng.Evaluate("1+1")
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	store, lerr := history.Open(path)
	require.Nil(t, lerr)
	next := apecrunch.NewEngine(store, 6)
	_, err = next.Evaluate("2+2")
	require.NoError(t, err)

	sessions := next.Sessions()
	require.Len(t, sessions, 2)
	all := next.AllEntries()
	require.Len(t, all, 2)
	assert.Equal(t, "1+1", all[0].Input)
	assert.Equal(t, "2+2", all[1].Input)

	entries, ok := next.Entries(sessions[0].ID)
	require.True(t, ok)
	assert.Len(t, entries, 1)
	_, ok = next.Entries(uuid.New())
	assert.False(t, ok)
}
