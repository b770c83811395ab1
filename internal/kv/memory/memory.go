// Package memory provides an in-process kv.Store used by tests and throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
)

// Store keeps values in a map guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ kv.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores copies of all entries under a single lock.
func (s *Store) Put(ctx context.Context, entries ...kv.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.data[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
