package credvault

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateEncryptionKey returns a fresh 32-byte key suitable for the engine,
// from the platform's cryptographically secure source.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate encryption key: %w", err)
	}
	return key, nil
}

// GenerateStringEncryptionKey returns a fresh key hex-encoded, the form the
// envkey provider expects in CREDVAULT_ENCRYPTION_KEY.
func GenerateStringEncryptionKey() (string, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
