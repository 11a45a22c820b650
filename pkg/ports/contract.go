package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJourneyStoreContract runs a suite of tests to verify that a JourneyStore
// implementation adheres to the interface contract.
func RunJourneyStoreContract(t *testing.T, store JourneyStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		token := "apply~0a1b2c3d-4e5f6a7b"
		require.NoError(t, store.Save(ctx, sessionID, "apply", token))

		loaded, err := store.Load(ctx, sessionID, "apply")
		require.NoError(t, err)
		assert.Equal(t, token, loaded)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, "renew", "renew~00000001"))
		require.NoError(t, store.Save(ctx, sessionID, "renew", "renew~00000001-00000002"))

		loaded, err := store.Load(ctx, sessionID, "renew")
		require.NoError(t, err)
		assert.Equal(t, "renew~00000001-00000002", loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, sessionID, "missing")
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)

		_, err = store.Load(ctx, "non-existent-"+sessionID, "apply")
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
	})

	t.Run("Sessions Are Isolated", func(t *testing.T) {
		other := sessionID + "-other"
		require.NoError(t, store.Save(ctx, other, "apply", "apply~ffffffff"))
		defer func() { _ = store.Delete(ctx, other, "apply") }()

		loaded, err := store.Load(ctx, sessionID, "apply")
		require.NoError(t, err)
		assert.NotEqual(t, "apply~ffffffff", loaded)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, sessionID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"apply", "renew"}, names)

		names, err = store.List(ctx, "non-existent-"+sessionID)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID, "apply"))

		_, err := store.Load(ctx, sessionID, "apply")
		assert.ErrorIs(t, err, domain.ErrJourneyNotFound, "Load after Delete should return ErrJourneyNotFound")

		// Other journeys of the session survive.
		_, err = store.Load(ctx, sessionID, "renew")
		assert.NoError(t, err)

		assert.NoError(t, store.Delete(ctx, sessionID, "apply"), "Delete is idempotent")
		require.NoError(t, store.Delete(ctx, sessionID, "renew"))
	})
}
