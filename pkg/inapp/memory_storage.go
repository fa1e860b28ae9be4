package inapp

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("inapp: notification not found")
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing; production deployments use the
// Postgres implementation.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.ID == "" {
		return errors.New("inapp: notification ID is required")
	}
	if notif.UserID == "" {
		return errors.New("inapp: user ID is required")
	}

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			// Return a copy to prevent external mutation of stored data
			notif := n
			return &notif, nil
		}
	}

	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications, exists := s.notifications[userID]
	if !exists {
		return []Notification{}, nil
	}

	var filtered []Notification
	for _, n := range notifications {
		// Expired rows are invisible to readers even before a cleanup pass
		// removes them.
		if n.IsExpired() {
			continue
		}

		if opts.OnlyUnread && n.Read {
			continue
		}

		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n.Type) {
			continue
		}

		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}

		filtered = append(filtered, n)
	}

	// Newest first.
	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}

	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifications, exists := s.notifications[userID]
	if !exists {
		return nil
	}

	idSet := make(map[string]struct{}, len(notifIDs))
	for _, id := range notifIDs {
		idSet[id] = struct{}{}
	}

	for i := range notifications {
		if _, ok := idSet[notifications[i].ID]; ok {
			notifications[i].MarkAsRead()
		}
	}

	s.notifications[userID] = notifications
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifications, exists := s.notifications[userID]
	if !exists {
		return nil
	}

	idSet := make(map[string]struct{}, len(notifIDs))
	for _, id := range notifIDs {
		idSet[id] = struct{}{}
	}

	var remaining []Notification
	for _, n := range notifications {
		if _, ok := idSet[n.ID]; !ok {
			remaining = append(remaining, n)
		}
	}

	s.notifications[userID] = remaining
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read && !n.IsExpired() {
			count++
		}
	}

	return count, nil
}
