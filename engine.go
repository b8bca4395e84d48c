package credvault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/hengadev/credvault/internal/serialization"
)

// Engine performs authenticated encryption and decryption of credential
// field maps with AES-256-GCM. It is constructed once at startup with an
// explicit Keyring; there is no ambient or static key state.
//
// Encryption is non-deterministic (a fresh nonce per call), so identical
// field sets produce different ciphertexts on every write and ciphertext
// equality cannot be used to infer plaintext equality across records.
//
// All operations are pure and CPU-bound; an Engine is safe for use from any
// number of goroutines.
type Engine struct {
	keyring Keyring
}

// NewEngine creates an Engine over the given keyring. The keyring must hold
// at least one key; a zero Keyring is rejected so a process can never run
// without a confidentiality guarantee.
func NewEngine(keyring Keyring) (*Engine, error) {
	if keyring.Versions() == 0 {
		return nil, fmt.Errorf("%w: engine requires a provisioned keyring", ErrKeyUnavailable)
	}
	return &Engine{keyring: keyring}, nil
}

// NewEngineFromProvider provisions a keyring from the provider and builds an
// Engine over it. A provisioning failure is fatal to startup: the caller is
// expected to exit rather than continue without encryption.
func NewEngineFromProvider(ctx context.Context, provider KeyProvider) (*Engine, error) {
	keyring, err := provider.ProvisionKeyring(ctx)
	if err != nil {
		return nil, fmt.Errorf("provision keyring: %w", err)
	}
	return NewEngine(keyring)
}

// ActiveKeyVersion reports the key version new ciphertexts are tagged with.
func (e *Engine) ActiveKeyVersion() int {
	return e.keyring.ActiveVersion()
}

// EncryptFields serializes the field map canonically and encrypts it under
// the active key. The returned envelope is the only form in which the
// fields may be persisted.
func (e *Engine) EncryptFields(fields FieldMap) (string, error) {
	plaintext, err := serialization.EncodeFieldMap(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	gcm, err := e.aead(e.keyring.activeKey())
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: nonce generation: %v", ErrEncryptionFailed, err)
	}

	raw := gcm.Seal(nonce, nonce, plaintext, nil)
	return encodeEnvelope(e.keyring.ActiveVersion(), raw), nil
}

// DecryptFields opens an envelope produced by EncryptFields and parses the
// field map back out. Tampering, truncation or bit-rot in the stored
// envelope reports ErrCorruptCiphertext; an envelope tagged with a key
// version the keyring no longer holds reports ErrKeyUnavailable, since that
// is a provisioning gap rather than data damage.
func (e *Engine) DecryptFields(envelope string) (FieldMap, error) {
	keyVersion, raw, err := parseEnvelope(envelope)
	if err != nil {
		return nil, err
	}

	key, ok := e.keyring.key(keyVersion)
	if !ok {
		return nil, fmt.Errorf("%w: no key for version %d", ErrKeyUnavailable, keyVersion)
	}
	gcm, err := e.aead(key)
	if err != nil {
		return nil, err
	}
	if len(raw) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: payload shorter than nonce", ErrCorruptCiphertext)
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrCorruptCiphertext)
	}

	// A payload that authenticated but no longer parses is damage all the
	// same.
	fields, err := serialization.DecodeFieldMap(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCiphertext, err)
	}
	return fields, nil
}

// aead builds the AES-256-GCM cipher for a key. Keyring construction
// enforces KeySize, so for any key handed out by the ring this cannot fail;
// the error paths exist for the compiler, not for runtime.
func (e *Engine) aead(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: create cipher: %v", ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: create GCM: %v", ErrEncryptionFailed, err)
	}
	return gcm, nil
}
