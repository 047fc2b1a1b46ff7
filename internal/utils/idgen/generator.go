package idgen

import (
	"crypto/rand"
	"fmt"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID generates a cryptographically secure identifier of the form
// "<prefix>_<length random chars>" using lowercase alphanumerics only, so the
// result is URL-safe without escaping.
func GenerateSecureID(prefix string, length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := make([]byte, length)
	for i := range bytes {
		encoded[i] = charset[int(bytes[i])%len(charset)]
	}

	return fmt.Sprintf("%s_%s", prefix, encoded), nil
}

// GenerateSuffix generates a bare random suffix (no prefix or separator),
// used to disambiguate URL slugs.
func GenerateSuffix(length int) (string, error) {
	id, err := GenerateSecureID("x", length)
	if err != nil {
		return "", err
	}
	return id[2:], nil
}
