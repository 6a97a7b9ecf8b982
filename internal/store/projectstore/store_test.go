package projectstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGetUpdate(t *testing.T) {
	s := New("")

	s.Put(Record{ID: "p1", Name: "Bakery", Prompt: "a bakery site", ProjectType: "frontend", FileCount: 5})

	rec, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Bakery", rec.Name)
	assert.Equal(t, StatusComplete, rec.Status, "empty status normalizes")
	assert.False(t, rec.CreatedAt.IsZero())

	updated, ok := s.Update("p1", func(r *Record) {
		r.Status = StatusDegraded
		r.ErrorCount = 2
		r.ID = "hijacked"
	})
	require.True(t, ok)
	assert.Equal(t, "p1", updated.ID, "update cannot change the key")
	assert.Equal(t, StatusDegraded, updated.Status)

	_, ok = s.Get("missing")
	assert.False(t, ok)
	_, ok = s.Update("missing", func(*Record) {})
	assert.False(t, ok)
}

func TestMemoryPutKeepsCreatedAt(t *testing.T) {
	s := New("")
	s.Put(Record{ID: "p1", Name: "v1"})
	first, _ := s.Get("p1")

	time.Sleep(5 * time.Millisecond)
	s.Put(Record{ID: "p1", Name: "v2"})
	second, _ := s.Get("p1")

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt) || second.UpdatedAt.Equal(first.UpdatedAt))
	assert.Equal(t, "v2", second.Name)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "projects.json")

	s := New(path)
	s.Put(Record{ID: "p1", Name: "Bakery", Prompt: "a bakery site"})
	s.Put(Record{ID: "p2", Name: "Portfolio", Prompt: "a portfolio"})

	// A second store against the same path sees the saved rows.
	reopened := New(path)
	rec, ok := reopened.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Bakery", rec.Name)
	assert.Len(t, reopened.List(), 2)
}

func TestListMostRecentFirst(t *testing.T) {
	s := New("")
	s.Put(Record{ID: "old", Name: "Old"})
	time.Sleep(5 * time.Millisecond)
	s.Put(Record{ID: "new", Name: "New"})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}

func TestOpenFallsBackToFileWithoutDSN(t *testing.T) {
	s := Open("", "")
	require.NotNil(t, s)
	s.Put(Record{ID: "p1"})
	_, ok := s.Get("p1")
	assert.True(t, ok)
}

func TestPutIgnoresEmptyID(t *testing.T) {
	s := New("")
	s.Put(Record{Name: "nameless"})
	assert.Empty(t, s.List())
}
