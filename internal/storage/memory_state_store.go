package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStateStore holds sync state in process memory. The watermark and
// pending list advance within a single process lifetime but are lost on exit,
// so long-running CLI sessions still avoid re-fetching records between cycles.
type MemoryStateStore struct {
	mu      sync.Mutex
	pending []string
	since   time.Time
}

// NewMemoryStateStore creates a MemoryStateStore starting from the given time.
func NewMemoryStateStore(since time.Time) *MemoryStateStore {
	return &MemoryStateStore{since: since}
}

// LastSyncTime returns the current watermark.
func (s *MemoryStateStore) LastSyncTime(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.since, nil
}

// SetLastSyncTime advances the watermark.
func (s *MemoryStateStore) SetLastSyncTime(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = t
	return nil
}

// PendingOrderIDs returns a copy of the pending order id list.
func (s *MemoryStateStore) PendingOrderIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pending), nil
}

// SetPendingOrderIDs replaces the pending order id list.
func (s *MemoryStateStore) SetPendingOrderIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = slices.Clone(ids)
	return nil
}

// RemovePendingOrderID removes a single order id from the pending list.
func (s *MemoryStateStore) RemovePendingOrderID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = slices.DeleteFunc(s.pending, func(p string) bool { return p == id })
	return nil
}
