package notify

import (
	"context"
	"sync"
)

// MemoryPreferenceStore is an in-memory PreferenceStore for development and
// testing.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
	users map[string]struct{}
}

// NewMemoryPreferenceStore creates an empty in-memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		prefs: make(map[string]Preferences),
		users: make(map[string]struct{}),
	}
}

// AddUser registers a known user without stored preferences.
func (s *MemoryPreferenceStore) AddUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
}

// Set stores preferences for a user, registering the user as known.
func (s *MemoryPreferenceStore) Set(userID string, prefs Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	s.prefs[userID] = prefs
}

func (s *MemoryPreferenceStore) Get(ctx context.Context, userID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.prefs[userID]
	if !ok {
		return Preferences{}, ErrNoPreferences
	}
	return prefs, nil
}

func (s *MemoryPreferenceStore) UserExists(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[userID]
	return ok, nil
}
