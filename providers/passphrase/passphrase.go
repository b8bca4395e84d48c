// Package passphrase provisions the vault keyring by deriving it from a
// master passphrase with Argon2id. Intended for single-node deployments
// without a KMS; the passphrase and salt come from the environment and the
// derivation is deterministic, so the same inputs always yield the same key.
package passphrase

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"

	"github.com/hengadev/credvault"
)

// Environment variables read by FromEnvironment.
const (
	EnvPassphrase = "CREDVAULT_MASTER_PASSPHRASE"
	EnvSalt       = "CREDVAULT_KEY_SALT" // hex, at least 16 bytes
)

// MinSaltLength is the minimum accepted salt size in bytes.
const MinSaltLength = 16

// Params are the Argon2id cost parameters for the derivation.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultParams returns the recommended cost parameters: 3 iterations over
// 64 MiB with 4 lanes.
func DefaultParams() Params {
	return Params{Time: 3, Memory: 64 * 1024, Threads: 4}
}

// Provider derives the active key from Passphrase and Salt. Params zero
// value means DefaultParams.
type Provider struct {
	Passphrase string
	Salt       []byte
	Params     Params
}

// FromEnvironment builds a Provider from CREDVAULT_MASTER_PASSPHRASE and
// CREDVAULT_KEY_SALT.
func FromEnvironment() (Provider, error) {
	pass := os.Getenv(EnvPassphrase)
	if pass == "" {
		return Provider{}, fmt.Errorf("%w: %s is not set", credvault.ErrKeyUnavailable, EnvPassphrase)
	}
	saltHex := os.Getenv(EnvSalt)
	if saltHex == "" {
		return Provider{}, fmt.Errorf("%w: %s is not set", credvault.ErrKeyUnavailable, EnvSalt)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return Provider{}, fmt.Errorf("%w: %s is not valid hex", credvault.ErrKeyUnavailable, EnvSalt)
	}
	return Provider{Passphrase: pass, Salt: salt}, nil
}

// ProvisionKeyring derives a single-version keyring from the passphrase.
func (p Provider) ProvisionKeyring(ctx context.Context) (credvault.Keyring, error) {
	if p.Passphrase == "" {
		return credvault.Keyring{}, fmt.Errorf("%w: empty passphrase", credvault.ErrKeyUnavailable)
	}
	if len(p.Salt) < MinSaltLength {
		return credvault.Keyring{}, fmt.Errorf("%w: salt must be at least %d bytes, got %d", credvault.ErrKeyUnavailable, MinSaltLength, len(p.Salt))
	}
	params := p.Params
	if params == (Params{}) {
		params = DefaultParams()
	}

	key := argon2.IDKey([]byte(p.Passphrase), p.Salt, params.Time, params.Memory, params.Threads, credvault.KeySize)
	return credvault.SingleKeyring(key)
}
