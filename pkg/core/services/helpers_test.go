package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

// memRepo keeps a copy of the last saved document, so changes that were
// never saved stay invisible the way they would with a real store.
type memRepo struct {
	mu      sync.Mutex
	state   domain.State
	saves   int
	saveErr error
	loadErr error
}

func (m *memRepo) Load(ctx context.Context) (*domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return copyState(&m.state), nil
}

func (m *memRepo) Save(ctx context.Context, s *domain.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = *copyState(s)
	m.saves++
	return nil
}

func (m *memRepo) Close() error { return nil }

func (m *memRepo) snapshot() *domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(&m.state)
}

func copyState(s *domain.State) *domain.State {
	out := &domain.State{
		Users:  append([]domain.User{}, s.Users...),
		Shorts: append([]domain.LinkRecord{}, s.Shorts...),
	}
	return out
}

var errDiskFull = errors.New("disk full")

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
