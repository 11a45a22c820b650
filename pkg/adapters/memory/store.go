package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Store implements ports.JourneyStore in memory.
// Safe for concurrent use. Tokens are immutable strings, so no copying is needed.
type Store struct {
	data map[string]map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]string),
	}
}

// Save stores the token of a journey.
func (s *Store) Save(ctx context.Context, sessionID, journey, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journeys, ok := s.data[sessionID]
	if !ok {
		journeys = make(map[string]string)
		s.data[sessionID] = journeys
	}
	journeys[journey] = token
	return nil
}

// Load retrieves the token of a journey.
func (s *Store) Load(ctx context.Context, sessionID, journey string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.data[sessionID][journey]
	if !ok {
		return "", domain.ErrJourneyNotFound
	}
	return token, nil
}

// Delete removes a journey, and the session once it holds none.
func (s *Store) Delete(ctx context.Context, sessionID, journey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journeys, ok := s.data[sessionID]
	if !ok {
		return nil
	}
	delete(journeys, journey)
	if len(journeys) == 0 {
		delete(s.data, sessionID)
	}
	return nil
}

// List returns the journeys stored for a session, sorted.
func (s *Store) List(ctx context.Context, sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data[sessionID]))
	for name := range s.data[sessionID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Sessions returns the number of sessions holding at least one journey.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
