// Package store implements a generic, write-through entity collection on top
// of a storage.Backend. Every mutation is persisted before it returns and
// announced on the event bus.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"clan-portal/events"
	"clan-portal/storage"
)

// Entity is implemented by pointer model types, e.g. *models.Clan.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
}

// Store is an ordered collection of T persisted under a single key.
// Entities handed out by the store are copies; the only way to change a
// stored entity is Update.
type Store[T Entity] struct {
	mu       sync.RWMutex
	key      string
	kind     string
	backend  storage.Backend
	bus      *events.Bus
	category events.Category
	codec    Codec[T]
	capacity int
	newID    func() string
	items    []T
}

type Option[T Entity] func(*Store[T])

// WithBus publishes an event in category for every successful mutation.
func WithBus[T Entity](bus *events.Bus, category events.Category) Option[T] {
	return func(s *Store[T]) {
		s.bus = bus
		s.category = category
	}
}

// WithCodec replaces the default SequenceCodec.
func WithCodec[T Entity](c Codec[T]) Option[T] {
	return func(s *Store[T]) { s.codec = c }
}

// WithCapacity keeps only the newest n entities; older ones are dropped on Add.
func WithCapacity[T Entity](n int) Option[T] {
	return func(s *Store[T]) { s.capacity = n }
}

// WithIDGenerator overrides NewID.
func WithIDGenerator[T Entity](gen func() string) Option[T] {
	return func(s *Store[T]) { s.newID = gen }
}

// New creates an empty store. kind names the entity in events and errors.
func New[T Entity](backend storage.Backend, key, kind string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		key:     key,
		kind:    kind,
		backend: backend,
		codec:   SequenceCodec[T]{},
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[T]) Key() string  { return s.key }
func (s *Store[T]) Kind() string { return s.kind }

// Load replaces the in-memory collection with the persisted one. A missing
// key falls back to seed. Undecodable data also falls back to seed but is
// reported as a *PersistenceError so the caller can decide to continue or
// abort. A failing backend leaves the collection empty.
func (s *Store[T]) Load(seed []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.backend.Get(s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		s.items = cloneAll(seed)
		return nil
	}
	if err != nil {
		s.items = nil
		return &PersistenceError{Key: s.key, Op: "read", Err: err}
	}

	items, err := s.codec.Decode(raw)
	if err != nil {
		s.items = cloneAll(seed)
		return &PersistenceError{Key: s.key, Op: "decode", Err: err}
	}
	s.items = items
	return nil
}

// Add appends e, assigning an id when it has none, and persists.
func (s *Store[T]) Add(e T) (T, error) {
	var zero T
	item, err := clone(e)
	if err != nil {
		return zero, &PersistenceError{Key: s.key, Op: "copy", Err: err}
	}
	if item.EntityID() == "" {
		item.SetEntityID(s.newID())
	}

	s.mu.Lock()
	if s.indexOf(item.EntityID()) >= 0 {
		s.mu.Unlock()
		return zero, fmt.Errorf("%s %s: %w", s.kind, item.EntityID(), ErrDuplicateID)
	}
	prev := s.items
	next := make([]T, 0, len(prev)+1)
	next = append(next, prev...)
	next = append(next, item)
	if s.capacity > 0 && len(next) > s.capacity {
		next = next[len(next)-s.capacity:]
	}
	if err := s.commit(next); err != nil {
		s.mu.Unlock()
		return zero, err
	}
	s.mu.Unlock()

	s.notify(item.EntityID())
	out, _ := clone(item)
	return out, nil
}

// Get returns a copy of the entity with id.
func (s *Store[T]) Get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", s.kind, id, ErrNotFound)
	}
	out, err := clone(s.items[i])
	if err != nil {
		return zero, &PersistenceError{Key: s.key, Op: "copy", Err: err}
	}
	return out, nil
}

// Find returns the first entity matching pred.
func (s *Store[T]) Find(pred func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	for _, it := range s.items {
		if pred(it) {
			out, err := clone(it)
			if err != nil {
				return zero, false
			}
			return out, true
		}
	}
	return zero, false
}

// Filter returns copies of every entity matching pred, in store order.
func (s *Store[T]) Filter(pred func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, it := range s.items {
		if pred == nil || pred(it) {
			if c, err := clone(it); err == nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// All returns copies of every entity in store order.
func (s *Store[T]) All() []T {
	return s.Filter(nil)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Update applies mutate to a copy of the entity and, if it returns nil,
// stores and persists the copy. A mutator error leaves the store untouched
// and is returned as is.
func (s *Store[T]) Update(id string, mutate func(T) error) (T, error) {
	var zero T
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return zero, fmt.Errorf("%s %s: %w", s.kind, id, ErrNotFound)
	}
	working, err := clone(s.items[i])
	if err != nil {
		s.mu.Unlock()
		return zero, &PersistenceError{Key: s.key, Op: "copy", Err: err}
	}
	if err := mutate(working); err != nil {
		s.mu.Unlock()
		return zero, err
	}
	// detach from strings the mutator captured
	if working, err = clone(working); err != nil {
		s.mu.Unlock()
		return zero, &PersistenceError{Key: s.key, Op: "copy", Err: err}
	}
	working.SetEntityID(s.items[i].EntityID())

	next := make([]T, len(s.items))
	copy(next, s.items)
	next[i] = working
	if err := s.commit(next); err != nil {
		s.mu.Unlock()
		return zero, err
	}
	s.mu.Unlock()

	s.notify(working.EntityID())
	out, _ := clone(working)
	return out, nil
}

// Discard removes the entity with id. It exists to undo an Add inside a
// multi-store operation whose later step failed.
func (s *Store[T]) Discard(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%s %s: %w", s.kind, id, ErrNotFound)
	}
	id = s.items[i].EntityID()
	next := make([]T, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	if err := s.commit(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(id)
	return nil
}

// Persist writes the current collection to the backend.
func (s *Store[T]) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.items)
}

// commit persists next and only then makes it the live collection.
// Callers hold s.mu.
func (s *Store[T]) commit(next []T) error {
	raw, err := s.codec.Encode(next)
	if err != nil {
		return &PersistenceError{Key: s.key, Op: "encode", Err: err}
	}
	if err := s.backend.Set(s.key, raw); err != nil {
		return &PersistenceError{Key: s.key, Op: "write", Err: err}
	}
	s.items = next
	return nil
}

func (s *Store[T]) indexOf(id string) int {
	for i, it := range s.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) notify(id string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Category: s.category, Kind: s.kind, ID: id})
}

// clone deep-copies through JSON, which every persisted model supports.
func clone[T Entity](e T) (T, error) {
	var out T
	b, err := json.Marshal(e)
	if err != nil {
		return out, err
	}
	if string(b) == "null" {
		return out, errNilEntity
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

func cloneAll[T Entity](items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c, err := clone(it); err == nil {
			out = append(out, c)
		}
	}
	return out
}
