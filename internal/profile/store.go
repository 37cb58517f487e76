package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/gswitch/gs/internal/platform"
)

// StoreVersion is the current on-disk document version
const StoreVersion = 1

// Store persists the profile collection as a single JSON document.
// All mutations go through the store; on any failure the in-memory and
// on-disk state both keep their previous contents.
type Store struct {
	path       string
	collection *Collection
}

// NewStore creates a store for the given document path. Call Load before
// using it.
func NewStore(path string) *Store {
	return &Store{
		path:       path,
		collection: NewCollection(),
	}
}

// Path returns the store document path
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted document. A missing file is not an error: it
// loads as an empty collection (first run). A document that exists but
// cannot be parsed into the expected shape fails with ErrCorruptStore.
func (s *Store) Load() (*Collection, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.collection = NewCollection()
		return copyCollection(s.collection), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile store %s: %w", s.path, err)
	}

	var col Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	if col.Version > StoreVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptStore, s.path, col.Version)
	}
	col.Version = StoreVersion
	if col.Profiles == nil {
		col.Profiles = []Profile{}
	}

	seen := make(map[string]bool, len(col.Profiles))
	for _, p := range col.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: %s: profile with empty id", ErrCorruptStore, s.path)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %s: duplicate profile id '%s'", ErrCorruptStore, s.path, p.ID)
		}
		seen[p.ID] = true
	}

	s.collection = &col
	return copyCollection(s.collection), nil
}

// Save persists the given collection as the full document, replacing the
// store contents. The write is atomic: a sibling temp file is written and
// renamed over the target, so a crash mid-write never leaves a truncated
// store.
func (s *Store) Save(col *Collection) error {
	next := copyCollection(col)
	next.Version = StoreVersion
	return s.commit(next)
}

// Add validates the profile, appends it and persists. Fails with
// ErrDuplicateID when the id is already taken.
func (s *Store) Add(p Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if s.collection.Find(p.ID) != nil {
		return fmt.Errorf("%w: '%s'", ErrDuplicateID, p.ID)
	}

	next := copyCollection(s.collection)
	next.Profiles = append(next.Profiles, p)
	return s.commit(next)
}

// Remove deletes the profile with the given id and persists. The active
// marker is cleared if it pointed at the removed profile. Fails with
// ErrNotFound when the id is absent.
func (s *Store) Remove(id string) error {
	if s.collection.Find(id) == nil {
		return fmt.Errorf("%w: '%s'", ErrNotFound, id)
	}

	next := copyCollection(s.collection)
	kept := next.Profiles[:0]
	for _, p := range next.Profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	next.Profiles = kept
	if next.Active == id {
		next.Active = ""
	}
	return s.commit(next)
}

// Update replaces the mutable fields of the profile with the given id and
// persists. The id itself cannot be changed. Fails with ErrNotFound when
// the id is absent.
func (s *Store) Update(id string, p Profile) error {
	if s.collection.Find(id) == nil {
		return fmt.Errorf("%w: '%s'", ErrNotFound, id)
	}

	p.ID = id
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	next := copyCollection(s.collection)
	for i := range next.Profiles {
		if next.Profiles[i].ID == id {
			next.Profiles[i] = p
			break
		}
	}
	return s.commit(next)
}

// Find returns a copy of the profile with the given id, or nil
func (s *Store) Find(id string) *Profile {
	p := s.collection.Find(id)
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// List returns the profiles in stored order
func (s *Store) List() []Profile {
	out := make([]Profile, len(s.collection.Profiles))
	copy(out, s.collection.Profiles)
	return out
}

// Active returns the id of the last fully applied profile, or ""
func (s *Store) Active() string {
	return s.collection.Active
}

// SetActive records the active marker and persists. An empty id clears
// the marker; a non-empty id must exist in the store.
func (s *Store) SetActive(id string) error {
	if id != "" && s.collection.Find(id) == nil {
		return fmt.Errorf("%w: '%s'", ErrNotFound, id)
	}

	next := copyCollection(s.collection)
	next.Active = id
	return s.commit(next)
}

// commit writes next to disk and adopts it as the current collection only
// when the write succeeds.
func (s *Store) commit(next *Collection) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profile store: %w", err)
	}
	data = append(data, '\n')

	if err := platform.MkdirSecure(filepath.Dir(s.path)); err != nil {
		return classifyWriteError(fmt.Errorf("failed to create store directory: %w", err))
	}
	if err := platform.WriteFileSecureAtomic(s.path, data); err != nil {
		return classifyWriteError(err)
	}

	s.collection = next
	return nil
}

// classifyWriteError maps OS-level causes onto the store's sentinel errors
// so callers can match on the failure kind.
func classifyWriteError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrWriteDenied, err)
	case errors.Is(err, syscall.ENOSPC):
		return fmt.Errorf("%w: %v", ErrDiskFull, err)
	}
	return err
}

// copyCollection returns a collection sharing no memory with the original
func copyCollection(c *Collection) *Collection {
	profiles := make([]Profile, len(c.Profiles))
	copy(profiles, c.Profiles)
	return &Collection{
		Version:  c.Version,
		Active:   c.Active,
		Profiles: profiles,
	}
}
