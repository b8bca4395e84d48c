package credvault

import (
	"context"
	"fmt"
)

// KeySize is the required length in bytes of every vault key (AES-256).
const KeySize = 32

// KeyProvider supplies the symmetric key material at process start. The
// provisioning layer (environment variable, passphrase derivation, AWS KMS,
// HashiCorp Vault) decides where the bytes come from; implementations live
// under providers/.
//
// A provider that cannot produce a keyring must return an error wrapping
// ErrKeyUnavailable. That error is fatal: the process refuses to start
// rather than run with no confidentiality guarantee.
type KeyProvider interface {
	ProvisionKeyring(ctx context.Context) (Keyring, error)
}

// Keyring holds the versioned symmetric keys of the engine. Exactly one
// version is active and used for new ciphertexts; older versions remain
// available for decryption so existing records survive rotation.
//
// A Keyring is immutable after construction and safe for concurrent use.
type Keyring struct {
	active int
	keys   map[int][]byte
}

// NewKeyring builds a keyring from version-tagged key material. Every key
// must be exactly KeySize bytes, versions must be positive, and the active
// version must be present.
func NewKeyring(activeVersion int, keys map[int][]byte) (Keyring, error) {
	if len(keys) == 0 {
		return Keyring{}, fmt.Errorf("%w: no keys supplied", ErrKeyUnavailable)
	}
	copied := make(map[int][]byte, len(keys))
	for version, key := range keys {
		if version <= 0 {
			return Keyring{}, fmt.Errorf("%w: key version must be positive, got %d", ErrInvalidConfiguration, version)
		}
		if len(key) != KeySize {
			return Keyring{}, fmt.Errorf("%w: key version %d must be %d bytes, got %d", ErrInvalidConfiguration, version, KeySize, len(key))
		}
		buf := make([]byte, KeySize)
		copy(buf, key)
		copied[version] = buf
	}
	if _, ok := copied[activeVersion]; !ok {
		return Keyring{}, fmt.Errorf("%w: active key version %d not supplied", ErrInvalidConfiguration, activeVersion)
	}
	return Keyring{active: activeVersion, keys: copied}, nil
}

// SingleKeyring builds a keyring holding one key at version 1. This is the
// common case for deployments that have never rotated.
func SingleKeyring(key []byte) (Keyring, error) {
	return NewKeyring(1, map[int][]byte{1: key})
}

// ActiveVersion reports the version used for new ciphertexts.
func (k Keyring) ActiveVersion() int {
	return k.active
}

// Versions reports how many key versions the ring holds.
func (k Keyring) Versions() int {
	return len(k.keys)
}

func (k Keyring) activeKey() []byte {
	return k.keys[k.active]
}

func (k Keyring) key(version int) ([]byte, bool) {
	key, ok := k.keys[version]
	return key, ok
}
