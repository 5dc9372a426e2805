package userprofile

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process user profile store. It is safe for concurrent use
// and suitable for tests and single-instance deployments; profiles do not
// survive a restart.
type Memory struct {
	mu         sync.RWMutex
	profiles   map[string]map[string]string
	maxEntries int
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMaxEntries caps the number of stored user profiles. When the cap is
// reached, saves for new users evict an arbitrary existing profile; a
// returning user is simply rebucketed deterministically, so eviction only
// costs stickiness across traffic reallocations.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// NewMemory creates an in-memory profile store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		profiles: make(map[string]map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup returns a copy of the user's stored decisions. An unknown user is
// an empty profile, not an error.
func (m *Memory) Lookup(ctx context.Context, userID string) (map[string]string, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return maps.Clone(profile), nil
}

// Save records one experiment decision for the user.
func (m *Memory) Save(ctx context.Context, userID, experimentID, variationID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if experimentID == "" || variationID == "" {
		return ErrInvalidProfile
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[userID]; !exists && m.maxEntries > 0 && len(m.profiles) >= m.maxEntries {
		for victim := range m.profiles {
			delete(m.profiles, victim)
			break
		}
	}

	if m.profiles[userID] == nil {
		m.profiles[userID] = make(map[string]string)
	}
	m.profiles[userID][experimentID] = variationID
	return nil
}

// Len reports the number of stored user profiles.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}
