package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryDigestStorage is an in-memory DigestStorage for development and
// testing. Items are lost on process exit; production deployments use the
// Postgres or Redis implementations.
type MemoryDigestStorage struct {
	mu    sync.RWMutex
	items []DigestItem
}

// NewMemoryDigestStorage creates an empty in-memory digest queue.
func NewMemoryDigestStorage() *MemoryDigestStorage {
	return &MemoryDigestStorage{}
}

func (s *MemoryDigestStorage) Enqueue(ctx context.Context, item DigestItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, item)
	return nil
}

func (s *MemoryDigestStorage) ListPending(ctx context.Context, freq Frequency) ([]DigestItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []DigestItem
	for _, item := range s.items {
		if item.SentAt == nil && item.Frequency == freq {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

func (s *MemoryDigestStorage) MarkSent(ctx context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		sent[id] = struct{}{}
	}

	for i := range s.items {
		if _, ok := sent[s.items[i].ID]; ok && s.items[i].SentAt == nil {
			ts := at
			s.items[i].SentAt = &ts
		}
	}
	return nil
}

// Len returns the total number of stored items, sent or pending.
func (s *MemoryDigestStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
