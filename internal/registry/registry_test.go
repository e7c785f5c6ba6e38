package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svnbatch/internal/domain"
)

func TestRegistrySelected(t *testing.T) {
	r := New(
		domain.PathEntry{Path: "/a", IncludeInOperations: true},
		domain.PathEntry{Path: "/b", IncludeInOperations: false},
		domain.PathEntry{Path: "", IncludeInOperations: true},
		domain.PathEntry{Path: "/a", IncludeInOperations: true},
		domain.PathEntry{Path: "/c", IncludeInOperations: true},
	)

	// Duplicates are kept and order follows the registry
	assert.Equal(t, []string{"/a", "/a", "/c"}, r.Selected())
	assert.Empty(t, New().Selected())
}

func TestRegistryAddAndEdit(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.Add())
	i, err := r.AddPath("/wc")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	require.Equal(t, 2, r.Len())

	e, err := r.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, domain.PathEntry{Path: "", IncludeInOperations: true}, e, "new entries are empty and included")

	require.NoError(t, r.SetPath(0, "/other"))
	require.NoError(t, r.SetIncluded(1, false))
	assert.Equal(t, []domain.PathEntry{
		{Path: "/other", IncludeInOperations: true},
		{Path: "/wc", IncludeInOperations: false},
	}, r.Entries())

	assert.True(t, r.Contains("/wc"))
	assert.False(t, r.Contains("/nope"))
}

func TestRegistryRemoveShiftsLaterEntries(t *testing.T) {
	r := New(
		domain.PathEntry{Path: "/a", IncludeInOperations: true},
		domain.PathEntry{Path: "/b", IncludeInOperations: false},
		domain.PathEntry{Path: "/c", IncludeInOperations: true},
	)

	require.NoError(t, r.Remove(1))
	assert.Equal(t, []domain.PathEntry{
		{Path: "/a", IncludeInOperations: true},
		{Path: "/c", IncludeInOperations: true},
	}, r.Entries())

	e, err := r.Entry(1)
	require.NoError(t, err)
	assert.Equal(t, "/c", e.Path)
}

func TestRegistryIndexOutOfRange(t *testing.T) {
	r := New(domain.PathEntry{Path: "/a", IncludeInOperations: true})

	assert.ErrorIs(t, r.Remove(1), ErrIndexOutOfRange)
	assert.ErrorIs(t, r.Remove(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, r.SetPath(3, "/x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, r.SetIncluded(5, false), ErrIndexOutOfRange)
	_, err := r.Entry(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, 1, r.Len(), "failed edits must leave the registry unchanged")
}

func TestRegistryEntriesIsACopy(t *testing.T) {
	r := New(domain.PathEntry{Path: "/a", IncludeInOperations: true})
	entries := r.Entries()
	entries[0].Path = "/mutated"

	e, err := r.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, "/a", e.Path)
}

func TestRegistryRejectsPathsThatCannotBeSaved(t *testing.T) {
	r := New(domain.PathEntry{Path: "/a", IncludeInOperations: true})

	_, err := r.AddPath("/tmp/\xff\xfe")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, r.SetPath(0, "/tmp/\xff\xfe"), ErrInvalidPath)

	assert.Equal(t, []domain.PathEntry{{Path: "/a", IncludeInOperations: true}}, r.Entries())

	_, err = r.AddPath("/tmp/Ünïcødé")
	assert.NoError(t, err)
}
