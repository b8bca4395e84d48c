// Package envkey provisions the vault keyring from environment variables.
//
// This is the simplest KeyProvider: the key lives in the deployment
// environment (injected by the orchestrator's secret mechanism) and is read
// once at process start. Absence of the key is fatal by design.
package envkey

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hengadev/credvault"
)

// Environment variables read by the provider.
const (
	// EnvEncryptionKey holds the active key, hex encoded (64 hex chars for
	// a 32-byte key). An optional "N:" prefix tags it with key version N;
	// without a prefix the version is 1.
	EnvEncryptionKey = "CREDVAULT_ENCRYPTION_KEY"

	// EnvRetiredKeys optionally holds older decrypt-only keys after a
	// rotation, as a comma-separated list of "version:hex" entries.
	EnvRetiredKeys = "CREDVAULT_RETIRED_KEYS"
)

// Provider reads the keyring from the process environment. The zero value
// reads the standard variables; set KeyVar/RetiredVar to read others.
type Provider struct {
	KeyVar     string
	RetiredVar string
}

// ProvisionKeyring builds the keyring. A missing or malformed active key
// returns an error wrapping credvault.ErrKeyUnavailable, which callers must
// treat as fatal to startup.
func (p Provider) ProvisionKeyring(ctx context.Context) (credvault.Keyring, error) {
	keyVar := p.KeyVar
	if keyVar == "" {
		keyVar = EnvEncryptionKey
	}
	retiredVar := p.RetiredVar
	if retiredVar == "" {
		retiredVar = EnvRetiredKeys
	}

	raw := os.Getenv(keyVar)
	if raw == "" {
		return credvault.Keyring{}, fmt.Errorf("%w: %s is not set", credvault.ErrKeyUnavailable, keyVar)
	}
	activeVersion, activeKey, err := parseVersionedKey(raw, 1)
	if err != nil {
		return credvault.Keyring{}, fmt.Errorf("%w: %s: %v", credvault.ErrKeyUnavailable, keyVar, err)
	}

	keys := map[int][]byte{activeVersion: activeKey}
	if retired := os.Getenv(retiredVar); retired != "" {
		for _, entry := range strings.Split(retired, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			version, key, err := parseVersionedKey(entry, 0)
			if err != nil {
				return credvault.Keyring{}, fmt.Errorf("%w: %s: %v", credvault.ErrKeyUnavailable, retiredVar, err)
			}
			if version == 0 {
				return credvault.Keyring{}, fmt.Errorf("%w: %s: retired keys need an explicit version tag", credvault.ErrKeyUnavailable, retiredVar)
			}
			if _, dup := keys[version]; dup {
				return credvault.Keyring{}, fmt.Errorf("%w: %s: duplicate key version %d", credvault.ErrKeyUnavailable, retiredVar, version)
			}
			keys[version] = key
		}
	}

	return credvault.NewKeyring(activeVersion, keys)
}

// parseVersionedKey parses "hex" or "version:hex". defaultVersion is used
// when no version tag is present; 0 means a tag is required.
func parseVersionedKey(entry string, defaultVersion int) (int, []byte, error) {
	version := defaultVersion
	hexKey := entry
	if tag, rest, ok := strings.Cut(entry, ":"); ok {
		v, err := strconv.Atoi(tag)
		if err != nil || v <= 0 {
			return 0, nil, fmt.Errorf("invalid key version tag %q", tag)
		}
		version = v
		hexKey = rest
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return 0, nil, fmt.Errorf("key is not valid hex")
	}
	if len(key) != credvault.KeySize {
		return 0, nil, fmt.Errorf("key must be %d bytes, got %d", credvault.KeySize, len(key))
	}
	return version, key, nil
}
