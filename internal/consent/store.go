package consent

import (
	"context"
	"fmt"
	"sync"

	"ocenmock.org/internal/apperr"
)

// Store persists consent records.
//
// Update must run fn atomically with respect to every other Update of the same
// id: fn sees the current record and its modifications become the stored record
// only if fn returns nil. Different ids may be updated concurrently.
type Store interface {
	Insert(ctx context.Context, c Consent) error
	Get(ctx context.Context, id string) (Consent, error)
	Update(ctx context.Context, id string, fn func(*Consent) error) (Consent, error)
}

// InMemory implements Store with one lock per record.
// State lives for the lifetime of the process.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*record
}

type record struct {
	mu sync.Mutex
	c  Consent
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*record)}
}

func (s *InMemory) Insert(ctx context.Context, c Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[c.ID]; ok {
		return fmt.Errorf("consent %s already stored", c.ID)
	}
	s.records[c.ID] = &record{c: c.clone()}
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Consent, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return Consent{}, fmt.Errorf("consent %s: %w", id, apperr.ErrNotFound)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.c.clone(), nil
}

func (s *InMemory) Update(ctx context.Context, id string, fn func(*Consent) error) (Consent, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return Consent{}, fmt.Errorf("consent %s: %w", id, apperr.ErrNotFound)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	next := rec.c.clone()
	if err := fn(&next); err != nil {
		return Consent{}, err
	}
	// identity and creation time are immutable
	next.ID = rec.c.ID
	next.CreatedAt = rec.c.CreatedAt
	rec.c = next
	return next.clone(), nil
}

// Len returns the number of stored consents.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *InMemory) lookup(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}
