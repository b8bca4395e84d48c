package credvault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Vault exposes the credential operations and enforces company isolation on
// every one of them. It holds no mutable shared state beyond the immutable
// engine keyring, so operations may run concurrently without coordination;
// concurrent writes to the same record race at the store with last-write-wins
// semantics.
type Vault struct {
	engine   *Engine
	store    CredentialStore
	mask     MaskPolicy
	resolver *TypeResolver
	now      func() time.Time
	newID    func() string
}

// Option configures a Vault at construction.
type Option func(*Vault) error

// WithMaskPolicy replaces the default masking policy.
func WithMaskPolicy(policy MaskPolicy) Option {
	return func(v *Vault) error {
		v.mask = policy
		return nil
	}
}

// WithCredentialTypes extends or overrides the provider→credential-type
// mapping used at creation time.
func WithCredentialTypes(extra map[string]string) Option {
	return func(v *Vault) error {
		v.resolver = NewTypeResolver(extra)
		return nil
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) error {
		if now == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidConfiguration)
		}
		v.now = now
		return nil
	}
}

// WithIDGenerator replaces the record id generator. Intended for tests.
func WithIDGenerator(newID func() string) Option {
	return func(v *Vault) error {
		if newID == nil {
			return fmt.Errorf("%w: nil id generator", ErrInvalidConfiguration)
		}
		v.newID = newID
		return nil
	}
}

// New creates a Vault over an encryption engine and a credential store.
func New(engine *Engine, store CredentialStore, opts ...Option) (*Vault, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", ErrInvalidConfiguration)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: credential store is required", ErrInvalidConfiguration)
	}
	v := &Vault{
		engine:   engine,
		store:    store,
		mask:     DefaultMaskPolicy(),
		resolver: NewTypeResolver(nil),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// authorize is the tenant check every operation runs first: the caller's
// company must equal the target company on the request path.
func (v *Vault) authorize(caller Identity, companyID string) error {
	if companyID == "" || caller.CompanyID != companyID {
		return fmt.Errorf("%w: caller company does not match target company", ErrPermissionDenied)
	}
	return nil
}

// findRecord loads a record scoped to (credentialID, companyID). A record
// owned by a different company yields ErrNotFound, not ErrPermissionDenied:
// cross-company existence must be indistinguishable from non-existence.
func (v *Vault) findRecord(ctx context.Context, companyID, credentialID string) (*CredentialRecord, error) {
	record, err := v.store.FindByID(ctx, companyID, credentialID)
	if err != nil {
		return nil, storageError("find credential", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, credentialID)
	}
	return record, nil
}

// storageError classifies a collaborator failure. Store errors never embed
// field content, so wrapping them verbatim is safe.
func storageError(op string, err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
