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

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// envelopePrefix marks encrypted entry content.
const envelopePrefix = "enc:v1:"

// ErrKeySize is returned for keys that are not 32 bytes.
var ErrKeySize = errors.New("encryption keys must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys into an EncryptionConfig. The first key is active.
func ParseKeys(active string, fallbacks ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	key, err := decodeKey(active)
	if err != nil {
		return cfg, err
	}
	cfg.ActiveKey = key
	for _, f := range fallbacks {
		k, err := decodeKey(f)
		if err != nil {
			return cfg, err
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, nil
}

func decodeKey(s string) ([]byte, error) {
	k, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key base64: %w", err)
	}
	if len(k) != 32 {
		return nil, ErrKeySize
	}
	return k, nil
}

type encryptionMiddleware struct {
	next   ports.TranscriptStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts entry content
// using AES-GCM. Roles, names and timestamps stay readable for monitoring.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, entries ...domain.Entry) error {
	sealed := make([]domain.Entry, len(entries))
	for i, e := range entries {
		ciphertext, err := encrypt([]byte(e.Content), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt entry: %w", err)
		}
		e.Content = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
		sealed[i] = e
	}
	return m.next.Append(ctx, sealed...)
}

func (m *encryptionMiddleware) Entries(ctx context.Context) ([]domain.Entry, error) {
	entries, err := m.next.Entries(ctx)
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		encoded, ok := strings.CutPrefix(e.Content, envelopePrefix)
		if !ok {
			// Fail secure: a plain entry means the store was written without encryption.
			return nil, fmt.Errorf("entry %d is missing encrypted data envelope", i)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt entry %d: %w", i, err)
		}
		entries[i].Content = string(plainText)
	}
	return entries, nil
}

func (m *encryptionMiddleware) Reset(ctx context.Context) error {
	return m.next.Reset(ctx)
}

func (m *encryptionMiddleware) Close() error {
	return m.next.Close()
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
