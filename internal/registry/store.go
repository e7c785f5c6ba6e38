package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"svnbatch/internal/domain"
)

// ErrConfigCorrupt is returned when the paths file exists but cannot be parsed
var ErrConfigCorrupt = errors.New("paths file is corrupt")

// Store persists a registry
type Store interface {
	Load() (*Registry, error)
	Save(r *Registry) error
	Path() string
}

// document is the on-disk layout: {"list": [{"path": ..., "includeInOperations": ...}]}
type document struct {
	List []domain.PathEntry `json:"list"`
}

// FileStore keeps the registry in a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location
func (s *FileStore) Path() string { return s.path }

// Load reads the registry. A missing file yields an empty registry.
// A malformed file yields an empty registry and an error wrapping ErrConfigCorrupt.
func (s *FileStore) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("failed to read paths file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return New(), fmt.Errorf("%w: %s: %v", ErrConfigCorrupt, s.path, err)
	}

	log.Printf("Loaded %d paths from %s", len(doc.List), s.path)
	return New(doc.List...), nil
}

// Save writes every entry, including excluded and empty ones, replacing the file
func (s *FileStore) Save(r *Registry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create paths directory: %w", err)
	}

	doc := document{List: r.Entries()}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal paths: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write paths file: %w", err)
	}

	log.Printf("Saved %d paths to %s", len(doc.List), s.path)
	return nil
}

// Open loads the registry and seeds it with one empty entry when it has none
func Open(s Store) (*Registry, error) {
	r, err := s.Load()
	if err != nil {
		return nil, err
	}
	if r.Len() == 0 {
		r.Add()
	}
	return r, nil
}

// LoadInto replaces the contents of dst with what the store holds.
// On error dst is left untouched.
func LoadInto(s Store, dst *Registry) error {
	r, err := s.Load()
	if err != nil {
		return err
	}
	dst.replace(r.Entries())
	return nil
}
