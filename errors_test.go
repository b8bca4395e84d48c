package credvault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hengadev/credvault"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		retryable     bool
		permission    bool
		notFound      bool
		crypto        bool
		corruption    bool
		configuration bool
	}{
		{
			name:       "permission denied",
			err:        fmt.Errorf("create: %w", credvault.ErrPermissionDenied),
			permission: true,
		},
		{
			name:     "not found",
			err:      fmt.Errorf("delete: %w", credvault.ErrNotFound),
			notFound: true,
		},
		{
			name: "invalid input",
			err:  fmt.Errorf("create: %w", credvault.ErrInvalidInput),
		},
		{
			name:      "storage unavailable is the only retryable class",
			err:       fmt.Errorf("insert: %w", credvault.ErrStorageUnavailable),
			retryable: true,
		},
		{
			name:       "corrupt ciphertext",
			err:        fmt.Errorf("credential abc: %w", credvault.ErrCorruptCiphertext),
			crypto:     true,
			corruption: true,
		},
		{
			name:          "key unavailable is both crypto and configuration",
			err:           fmt.Errorf("provision: %w", credvault.ErrKeyUnavailable),
			crypto:        true,
			configuration: true,
		},
		{
			name:   "encryption failed",
			err:    fmt.Errorf("seal: %w", credvault.ErrEncryptionFailed),
			crypto: true,
		},
		{
			name:          "invalid configuration",
			err:           fmt.Errorf("startup: %w", credvault.ErrInvalidConfiguration),
			configuration: true,
		},
		{
			name: "unrelated error matches nothing",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, credvault.IsRetryableError(tt.err))
			assert.Equal(t, tt.permission, credvault.IsPermissionError(tt.err))
			assert.Equal(t, tt.notFound, credvault.IsNotFoundError(tt.err))
			assert.Equal(t, tt.crypto, credvault.IsCryptoError(tt.err))
			assert.Equal(t, tt.corruption, credvault.IsCorruptionError(tt.err))
			assert.Equal(t, tt.configuration, credvault.IsConfigurationError(tt.err))
		})
	}
}

func TestClassifiersOnNil(t *testing.T) {
	assert.False(t, credvault.IsRetryableError(nil))
	assert.False(t, credvault.IsPermissionError(nil))
	assert.False(t, credvault.IsNotFoundError(nil))
	assert.False(t, credvault.IsCryptoError(nil))
	assert.False(t, credvault.IsCorruptionError(nil))
	assert.False(t, credvault.IsConfigurationError(nil))
}
