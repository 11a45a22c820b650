package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.JourneyStore, active []byte, fallback ...[]byte) ports.JourneyStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunJourneyStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))

	require.NoError(t, store.Save(ctx, "s1", "apply", "apply~aaaaaaaa-bbbbbbbb"))

	raw, err := underlying.Load(ctx, "s1", "apply")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "enc:v1:"))
	assert.NotContains(t, raw, "aaaaaaaa")

	token, err := store.Load(ctx, "s1", "apply")
	require.NoError(t, err)
	assert.Equal(t, "apply~aaaaaaaa-bbbbbbbb", token)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, encrypted(t, underlying, oldKey).Save(ctx, "s1", "apply", "apply~aaaaaaaa"))

	token, err := encrypted(t, underlying, newKey, oldKey).Load(ctx, "s1", "apply")
	require.NoError(t, err)
	assert.Equal(t, "apply~aaaaaaaa", token)

	_, err = encrypted(t, underlying, newKey).Load(ctx, "s1", "apply")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptionMiddleware_BoundToSlot(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))

	require.NoError(t, store.Save(ctx, "victim", "apply", "apply~aaaaaaaa"))
	raw, err := underlying.Load(ctx, "victim", "apply")
	require.NoError(t, err)
	require.NoError(t, underlying.Save(ctx, "attacker", "apply", raw))

	_, err = store.Load(ctx, "attacker", "apply")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainTokens(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "s1", "apply", "apply~aaaaaaaa"))

	_, err := encrypted(t, underlying, generateKey(t)).Load(ctx, "s1", "apply")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestNewEncryptionMiddleware_KeyLength(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)
	decoded, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = middleware.DecodeKey("!!")
	assert.Error(t, err)
	_, err = middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
