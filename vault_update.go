package credvault

import (
	"context"
	"fmt"
)

// UpdateInput carries the mutable credential metadata. Nil pointers leave
// the current value unchanged. The provider, the owning company and the
// encrypted fields cannot be changed through this path.
type UpdateInput struct {
	Name     *string
	IsActive *bool
}

// Update renames a credential and/or toggles its active flag, bumping
// updated_at. A deactivated credential must not be used for provisioning by
// any consumer, but it stays readable and listable.
func (v *Vault) Update(ctx context.Context, caller Identity, companyID, credentialID string, in UpdateInput) error {
	if err := v.authorize(caller, companyID); err != nil {
		return err
	}
	if in.Name == nil && in.IsActive == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if in.Name != nil && *in.Name == "" {
		return fmt.Errorf("%w: display name must not be empty", ErrInvalidInput)
	}

	record, err := v.findRecord(ctx, companyID, credentialID)
	if err != nil {
		return err
	}

	name := record.Name
	if in.Name != nil {
		name = *in.Name
	}
	isActive := record.IsActive
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	matched, err := v.store.UpdateMeta(ctx, companyID, credentialID, name, isActive, v.now())
	if err != nil {
		return storageError("update credential", err)
	}
	if !matched {
		return fmt.Errorf("%w: id %s", ErrNotFound, credentialID)
	}
	return nil
}
