package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunJourneyStoreContract(t, store)
}

func TestMemoryStore_DropsEmptySessions(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", "apply", "apply~00000001"))
	assert.Equal(t, 1, store.Sessions())

	require.NoError(t, store.Delete(ctx, "s1", "apply"))
	assert.Equal(t, 0, store.Sessions())
}
