package services

import (
	"context"
	"sync"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
	"github.com/wadjakorntonsri/shortly/pkg/ports"
)

// StateStore serializes access to the persisted document. Every service
// that touches the document must share one StateStore, otherwise a save
// from one side can clobber the other.
type StateStore struct {
	mu   sync.RWMutex
	repo ports.StateRepository
}

func NewStateStore(repo ports.StateRepository) *StateStore {
	return &StateStore{repo: repo}
}

// Read loads the current document under a read lock and hands it to fn.
// fn must not retain the document.
func (s *StateStore) Read(ctx context.Context, fn func(*domain.State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	return fn(state.Normalize())
}

// Mutate runs load, fn, save under the write lock. Nothing is saved when
// fn returns an error. Save errors are returned to the caller as-is.
func (s *StateStore) Mutate(ctx context.Context, fn func(*domain.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(state.Normalize()); err != nil {
		return err
	}
	return s.repo.Save(ctx, state)
}
