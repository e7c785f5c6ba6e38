package registry

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"svnbatch/internal/domain"
)

var (
	// ErrIndexOutOfRange is returned when an entry index does not exist
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidPath is returned for paths the JSON paths file cannot hold
	// unchanged, i.e. paths that are not valid UTF-8
	ErrInvalidPath = errors.New("path is not valid UTF-8")
)

// Registry is the ordered list of registered working copies.
// Order is display order and duplicates are allowed.
type Registry struct {
	mu      sync.RWMutex
	entries []domain.PathEntry
}

// New creates a registry holding a copy of entries
func New(entries ...domain.PathEntry) *Registry {
	r := &Registry{}
	r.entries = append(r.entries, entries...)
	return r
}

// Add appends an empty, included entry and returns its index
func (r *Registry) Add() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, domain.PathEntry{IncludeInOperations: true})
	return len(r.entries) - 1
}

// AddPath appends an included entry for path and returns its index
func (r *Registry) AddPath(path string) (int, error) {
	if err := validPath(path); err != nil {
		return -1, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, domain.PathEntry{Path: path, IncludeInOperations: true})
	return len(r.entries) - 1, nil
}

// Remove deletes the entry at index; later entries shift down by one
func (r *Registry) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(index); err != nil {
		return err
	}
	r.entries = append(r.entries[:index], r.entries[index+1:]...)
	return nil
}

// SetPath replaces the path of the entry at index
func (r *Registry) SetPath(index int, path string) error {
	if err := validPath(path); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(index); err != nil {
		return err
	}
	r.entries[index].Path = path
	return nil
}

// SetIncluded sets whether the entry at index takes part in batch operations
func (r *Registry) SetIncluded(index int, included bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(index); err != nil {
		return err
	}
	r.entries[index].IncludeInOperations = included
	return nil
}

// Entry returns the entry at index
func (r *Registry) Entry(index int) (domain.PathEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(index); err != nil {
		return domain.PathEntry{}, err
	}
	return r.entries[index], nil
}

// Entries returns a copy of all entries in order
func (r *Registry) Entries() []domain.PathEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PathEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Contains reports whether some entry has exactly this path
func (r *Registry) Contains(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Path == path {
			return true
		}
	}
	return false
}

// Selected returns the paths that batch operations act on:
// included entries with a non-empty path, in registry order.
func (r *Registry) Selected() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var paths []string
	for _, e := range r.entries {
		if e.Selectable() {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// replace swaps the whole list, used by loading
func (r *Registry) replace(entries []domain.PathEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
}

// check must be called with the lock held
func (r *Registry) check(index int) error {
	if index < 0 || index >= len(r.entries) {
		return fmt.Errorf("%w: %d (have %d entries)", ErrIndexOutOfRange, index, len(r.entries))
	}
	return nil
}

func validPath(path string) error {
	if !utf8.ValidString(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
