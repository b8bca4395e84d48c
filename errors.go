package credvault

import (
	"errors"
)

var (
	// Request-level errors surfaced by vault operations.
	ErrPermissionDenied = errors.New("permission denied for company")
	ErrNotFound         = errors.New("credential not found")
	ErrInvalidInput     = errors.New("invalid input")

	// Crypto errors.
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrCorruptCiphertext = errors.New("corrupt ciphertext")
	ErrKeyUnavailable    = errors.New("encryption key unavailable")

	// Collaborator errors.
	ErrStorageUnavailable = errors.New("credential storage unavailable")

	// Startup errors.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsRetryableError returns true if the error represents a transient failure
// that might succeed on retry with backoff. Crypto and permission failures
// are never retryable.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsPermissionError returns true if the caller is not allowed to act on the
// requested company.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsNotFoundError returns true if no credential exists for the given id
// within the caller's company. A credential owned by another company reports
// the same way; the two cases are deliberately indistinguishable.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCryptoError returns true if the error came out of the encryption engine,
// either because a key was unavailable or because stored data failed
// authentication.
func IsCryptoError(err error) bool {
	return errors.Is(err, ErrEncryptionFailed) ||
		errors.Is(err, ErrCorruptCiphertext) ||
		errors.Is(err, ErrKeyUnavailable)
}

// IsCorruptionError returns true if a stored ciphertext failed integrity
// checks. This indicates data damage, not absence: callers should alert, not
// retry.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruptCiphertext)
}

// IsConfigurationError returns true if the error represents a startup
// configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrKeyUnavailable)
}
