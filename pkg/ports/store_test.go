package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// MockStore is a map-backed JourneyStore used to check the contract suite itself.
type MockStore struct {
	data map[string]map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]map[string]string)}
}

func (m *MockStore) Save(ctx context.Context, sessionID, journey, token string) error {
	if m.data[sessionID] == nil {
		m.data[sessionID] = make(map[string]string)
	}
	m.data[sessionID][journey] = token
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID, journey string) (string, error) {
	token, ok := m.data[sessionID][journey]
	if !ok {
		return "", domain.ErrJourneyNotFound
	}
	return token, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID, journey string) error {
	delete(m.data[sessionID], journey)
	return nil
}

func (m *MockStore) List(ctx context.Context, sessionID string) ([]string, error) {
	names := make([]string, 0, len(m.data[sessionID]))
	for name := range m.data[sessionID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func TestJourneyStore_Contract(t *testing.T) {
	ports.RunJourneyStoreContract(t, NewMockStore())
}
