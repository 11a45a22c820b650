package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, sessionID, journey, token string) error { return nil }
func (m *MockStore) Load(ctx context.Context, sessionID, journey string) (string, error) {
	return "", domain.ErrJourneyNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID, journey string) error { return nil }
func (m *MockStore) List(ctx context.Context, sessionID string) ([]string, error) {
	return nil, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewJourney("apply", "00000001"))
		_ = mgr.Delete(ctx, sid, "apply")
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

func TestManager_WithLockIsReentrant(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()

	err := mgr.WithLock(ctx, "s1", func(ctx context.Context) error {
		// Would deadlock if the nested call locked again.
		return mgr.Save(ctx, "s1", domain.NewJourney("apply", "00000001"))
	})
	if err != nil {
		t.Fatalf("nested save failed: %v", err)
	}
	if len(mgr.locks) != 0 {
		t.Errorf("expected no locks after WithLock, got %d", len(mgr.locks))
	}
}
