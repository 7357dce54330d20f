package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a thread-safe store used when a database is not configured.
type InMemoryStore struct {
	mu          sync.RWMutex
	generations []Generation
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{generations: make([]Generation, 0)}
}

// RecordGeneration prepends the record, keeping only the most recent entries.
func (s *InMemoryStore) RecordGeneration(_ context.Context, input Generation) (Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	s.generations = append([]Generation{input}, s.generations...)
	if len(s.generations) > listLimit {
		s.generations = s.generations[:listLimit]
	}

	return input, nil
}

// ListGenerations returns a snapshot of stored records, newest first.
func (s *InMemoryStore) ListGenerations(_ context.Context) ([]Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Generation, len(s.generations))
	copy(snapshot, s.generations)
	return snapshot, nil
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
