package credvault

import (
	"context"
	"time"
)

// CredentialStore is the persistence collaborator of the vault. All lookups
// are exact-match on the record id and/or the owning company id; identifiers
// must round-trip exactly as stored.
//
// Mutating operations report whether a record matched the filter separately
// from infrastructure failure, so the vault can distinguish "not found"
// from "storage broken". Implementations signal infrastructure failure by
// returning an error wrapping ErrStorageUnavailable; the vault wraps any
// other error the same way.
//
// Backends ship under storage/ (SQLite, S3); an in-memory store for tests
// is provided by NewMemoryStore.
type CredentialStore interface {
	// Insert persists a new record. The record id is already set and unique.
	Insert(ctx context.Context, record *CredentialRecord) error

	// FindByCompany returns every record owned by the company, in
	// storage-defined order. An unknown company yields an empty result, not
	// an error.
	FindByCompany(ctx context.Context, companyID string) ([]CredentialRecord, error)

	// FindByID returns the record matching both id and company, or
	// (nil, nil) when no such record exists.
	FindByID(ctx context.Context, companyID, credentialID string) (*CredentialRecord, error)

	// UpdateEnvironments replaces the environment set of the matching record
	// and sets its updated_at. Returns false when no record matched.
	UpdateEnvironments(ctx context.Context, companyID, credentialID string, environments []string, updatedAt time.Time) (bool, error)

	// UpdateMeta sets the mutable metadata (name, active flag) of the
	// matching record and its updated_at. Returns false when no record
	// matched.
	UpdateMeta(ctx context.Context, companyID, credentialID, name string, isActive bool, updatedAt time.Time) (bool, error)

	// Delete removes the matching record permanently. Returns false when no
	// record matched.
	Delete(ctx context.Context, companyID, credentialID string) (bool, error)
}
