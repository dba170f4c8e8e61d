// Package store holds the template used for renders.
//
// A Store keeps the current Definition as an immutable snapshot behind an
// atomic pointer: renders read it without locking and never observe a
// partially replaced template. Replacements are serialized, validated,
// persisted through a Backend, and only then published.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/compose"
)

// ErrNotFound is returned by a Backend that holds no template.
var ErrNotFound = errors.New("store: template not found")

// Backend persists the raw template document.
type Backend interface {
	// Load returns the stored document, or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored document.
	Save(ctx context.Context, data []byte) error
}

// snapshot pairs a parsed template with the document it came from.
type snapshot struct {
	def *compose.Definition
	raw []byte
}

// Store is the single-writer, many-reader holder of the current template.
//
// Store is safe for concurrent use.
type Store struct {
	backend Backend
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
}

// New creates an empty Store persisting to backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted template and publishes it. A backend with no
// template leaves the store empty without error.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, err := s.backend.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		compose.Logger().Info("store: no persisted template")
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: load: %w", err)
	}
	def, err := compose.ParseDefinition(raw)
	if err != nil {
		return fmt.Errorf("store: load: %w", err)
	}
	s.current.Store(&snapshot{def: def, raw: raw})
	compose.Logger().Info("store: template loaded", "elements", len(def.Elements))
	return nil
}

// Get returns the current template, or compose.ErrTemplateUnavailable
// when none has been loaded or stored.
func (s *Store) Get(ctx context.Context) (*compose.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.current.Load()
	if snap == nil {
		return nil, compose.ErrTemplateUnavailable
	}
	return snap.def, nil
}

// Raw returns the document the current template was parsed from.
func (s *Store) Raw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.current.Load()
	if snap == nil {
		return nil, compose.ErrTemplateUnavailable
	}
	return snap.raw, nil
}

// Put validates raw, persists it, and publishes it as the current
// template. A payload without an "elements" array is rejected with
// compose.ErrInvalidTemplateShape and the current template is kept.
// Problems inside individual elements are not checked here.
func (s *Store) Put(ctx context.Context, raw []byte) (*compose.Definition, error) {
	def, err := compose.ParseDefinition(raw)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored := append([]byte(nil), raw...)
	if err := s.backend.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("store: save: %w", err)
	}
	s.current.Store(&snapshot{def: def, raw: stored})
	compose.Logger().Info("store: template replaced", "elements", len(def.Elements))
	return def, nil
}
