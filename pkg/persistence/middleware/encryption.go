package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/waypoint/pkg/ports"
)

// envelopePrefix marks a stored token as encrypted.
const envelopePrefix = "enc:v1:"

// ErrNotEncrypted is returned when a stored token lacks the encryption envelope.
var ErrNotEncrypted = errors.New("stored journey is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are old keys tried when decryption with ActiveKey fails,
	// so keys can be rotated without invalidating stored journeys.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.JourneyStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts stored tokens
// with AES-GCM. The session id and journey name are bound as additional
// data, so a ciphertext copied to another slot does not decrypt.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, fmt.Errorf("active key must be 32 bytes (AES-256), got %d", len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256), got %d", i, len(k))
		}
	}
	return func(next ports.JourneyStore) ports.JourneyStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// DecodeKey parses a base64 encoded AES-256 key.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID, journey, token string) error {
	ciphertext, err := encrypt([]byte(token), m.config.ActiveKey, associatedData(sessionID, journey))
	if err != nil {
		return fmt.Errorf("failed to encrypt journey: %w", err)
	}
	return m.next.Save(ctx, sessionID, journey, envelopePrefix+base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID, journey string) (string, error) {
	stored, err := m.next.Load(ctx, sessionID, journey)
	if err != nil {
		return "", err
	}

	encoded, ok := strings.CutPrefix(stored, envelopePrefix)
	if !ok {
		return "", ErrNotEncrypted
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plain, err := decryptWithRotation(ciphertext, associatedData(sessionID, journey), m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt journey: %w", err)
	}
	return string(plain), nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID, journey string) error {
	return m.next.Delete(ctx, sessionID, journey)
}

func (m *encryptionMiddleware) List(ctx context.Context, sessionID string) ([]string, error) {
	return m.next.List(ctx, sessionID)
}

func associatedData(sessionID, journey string) []byte {
	return []byte(sessionID + "\x00" + journey)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plaintext, key, ad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, ad), nil
}

func decryptWithRotation(ciphertext, ad, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, ad, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, ad, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, ad, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, ad)
}
