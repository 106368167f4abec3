package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nested", "history.json"))
}

func TestLoadMissingIsEmpty(t *testing.T) {
	entries, err := newStore(t).Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddPrependsAndStamps(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Entry{Template: "vue", Path: "/tmp/a"}))
	require.NoError(t, s.Add(Entry{Template: "react", Path: "/tmp/b", Files: []string{"index.js"}}))

	entries, err := s.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "react", entries[0].Template)
	assert.Equal(t, []string{"index.js"}, entries[0].Files)
	assert.Equal(t, "vue", entries[1].Template)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestAddCapsEntries(t *testing.T) {
	s := newStore(t)
	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, s.Add(Entry{Template: "express"}))
	}
	entries, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, entries, MaxEntries)
}

func TestAddMovesCorruptFileAside(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "{not json"},
		{"truncated", `[{"template":"react","prompt":"a chat app","path":"/tmp/react-app"},`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.data), 0644))

			_, err := s.Load()
			assert.ErrorIs(t, err, ErrCorrupt)

			require.NoError(t, s.Add(Entry{Template: "mobile"}))
			entries, err := s.Load()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "mobile", entries[0].Template)

			kept, err := os.ReadFile(s.Path() + ".bak")
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(kept))
		})
	}
}

func TestAddKeepsEarlierBackups(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path()+".bak", []byte("first"), 0644))
	require.NoError(t, os.WriteFile(s.Path(), []byte("second"), 0644))

	backup, err := s.BackupPath()
	require.NoError(t, err)
	assert.Equal(t, s.Path()+".1.bak", backup)

	require.NoError(t, s.Add(Entry{Template: "vue"}))

	first, err := os.ReadFile(s.Path() + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "first", string(first))
	second, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "second", string(second))
}

func TestAddReportsUnreadableFile(t *testing.T) {
	s := newStore(t)
	// a directory in place of the file cannot be read as history
	require.NoError(t, os.MkdirAll(s.Path(), 0755))

	err := s.Add(Entry{Template: "vue"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorrupt)
	assert.DirExists(t, s.Path(), "the path is left alone")
	assert.NoFileExists(t, s.Path()+".bak")
}

func TestDeleteOld(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save([]Entry{
		{Template: "new", CreatedAt: time.Now()},
		{Template: "old", CreatedAt: time.Now().AddDate(0, 0, -40)},
	}))

	removed, err := s.DeleteOld(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := s.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Template)
}

func TestDeleteOne(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Entry{Template: "a"}))
	require.NoError(t, s.Add(Entry{Template: "b"}))

	assert.Error(t, s.DeleteOne(5))
	require.NoError(t, s.DeleteOne(0))

	entries, err := s.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Template)
}
