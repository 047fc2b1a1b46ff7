// Package crypto encrypts provider API keys before they reach the database.
// Keys are sealed with AES-256-GCM and stored as "iv:tag:ciphertext" with each
// part base64-encoded, so a leaked row never exposes a usable credential.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const gcmTagSize = 16

// ErrInvalidFormat is returned when a stored value is not a valid
// "iv:tag:ciphertext" triplet.
var ErrInvalidFormat = errors.New("invalid encrypted API key format")

// fallbackKeyPhrase seeds the cipher when ENCRYPTION_KEY is not configured.
// Fine for local development, never for production.
const fallbackKeyPhrase = "fallback_key_change_in_production"

// Cipher seals and opens API keys with a single 32-byte key.
type Cipher struct {
	key []byte
}

// New builds a Cipher from a 64-char hex key. An empty key falls back to a
// digest of a fixed development phrase; the caller should warn loudly.
func New(hexKey string) (*Cipher, error) {
	if hexKey == "" {
		sum := sha256.Sum256([]byte(fallbackKeyPhrase))
		return &Cipher{key: sum[:]}, nil
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 64 hex chars (32 bytes)")
	}
	return &Cipher{key: key}, nil
}

// UsingFallbackKey reports whether the cipher runs on the development key.
func (c *Cipher) UsingFallbackKey() bool {
	sum := sha256.Sum256([]byte(fallbackKeyPhrase))
	return string(c.key) == string(sum[:])
}

// EncryptAPIKey seals plaintext into the iv:tag:ciphertext storage format.
func (c *Cipher) EncryptAPIKey(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	// Seal appends the auth tag to the ciphertext; store them separately.
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ciphertext),
	}, ":"), nil
}

// DecryptAPIKey opens a stored iv:tag:ciphertext value.
func (c *Cipher) DecryptAPIKey(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", ErrInvalidFormat
	}

	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidFormat
	}
	tag, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidFormat
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidFormat
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(iv) != gcm.NonceSize() || len(tag) != gcmTagSize {
		return "", ErrInvalidFormat
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
