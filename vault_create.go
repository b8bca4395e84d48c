package credvault

import (
	"context"
	"fmt"

	"github.com/hengadev/errsx"
)

// CreateInput carries the plaintext material for a new credential. The
// fields are encrypted inside Create and never persisted or returned in the
// clear.
type CreateInput struct {
	Name         string
	Provider     string
	Fields       FieldMap
	Environments []string
}

func (in CreateInput) validate() error {
	var errs errsx.Map
	if in.Name == "" {
		errs.Set("name", "display name is required")
	}
	if in.Provider == "" {
		errs.Set("provider", "provider is required")
	}
	if len(in.Fields) == 0 {
		errs.Set("fields", "at least one secret field is required")
	}
	for name := range in.Fields {
		if name == "" {
			errs.Set("fields", "field names must not be empty")
			break
		}
	}
	for _, env := range in.Environments {
		if env == "" {
			errs.Set("environments", "environment ids must not be empty")
			break
		}
	}
	if !errs.IsEmpty() {
		return fmt.Errorf("%w: %v", ErrInvalidInput, errs.AsError())
	}
	return nil
}

// Create encrypts the input fields, persists a new credential record under
// the target company, and returns its masked representation. The caller's
// company must match the target company.
//
// The credential type is resolved from the provider at creation time and
// stored; an unrecognized provider resolves to "Unknown" and does not block
// creation. Environment ids are stored exactly as given; validating that
// they exist is the environment collaborator's concern, not the vault's.
func (v *Vault) Create(ctx context.Context, caller Identity, companyID string, in CreateInput) (*Credential, error) {
	if err := v.authorize(caller, companyID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	envelope, err := v.engine.EncryptFields(in.Fields)
	if err != nil {
		return nil, err
	}

	now := v.now()
	environments := make([]string, len(in.Environments))
	copy(environments, in.Environments)

	record := &CredentialRecord{
		ID:              v.newID(),
		CompanyID:       companyID,
		Name:            in.Name,
		Provider:        in.Provider,
		CredentialType:  v.resolver.Resolve(in.Provider),
		EncryptedFields: envelope,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
		Environments:    environments,
	}

	if err := v.store.Insert(ctx, record); err != nil {
		return nil, storageError("insert credential", err)
	}

	view := record.view(v.mask.Mask(in.Fields))
	return &view, nil
}
