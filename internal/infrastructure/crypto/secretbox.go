// Package crypto seals credential secrets before they reach the database.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks values produced by Seal so plaintext rows written
// before encryption was enabled can still be read.
const sealedPrefix = "v1:"

var (
	ErrInvalidKey    = errors.New("crypto: key must be 32 bytes, hex or base64 encoded")
	ErrCorruptSecret = errors.New("crypto: sealed value is corrupt")
)

// SecretBox encrypts short strings with XChaCha20-Poly1305.
type SecretBox struct {
	key []byte
}

// NewSecretBox parses a 32-byte key given as hex or standard base64.
func NewSecretBox(encodedKey string) (*SecretBox, error) {
	key, err := decodeKey(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, err
	}
	return &SecretBox{key: key}, nil
}

func decodeKey(s string) ([]byte, error) {
	if b, err := hex.DecodeString(s); err == nil && len(b) == chacha20poly1305.KeySize {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == chacha20poly1305.KeySize {
		return b, nil
	}
	return nil, ErrInvalidKey
}

// Seal encrypts plaintext. The empty string stays empty.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the sealed
// prefix are returned unchanged.
func (b *SecretBox) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", ErrCorruptSecret
	}
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrCorruptSecret
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCorruptSecret
	}
	return string(plain), nil
}
