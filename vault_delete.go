package credvault

import (
	"context"
	"fmt"
)

// Delete removes a credential permanently. There is no soft delete and no
// tombstone: the first call succeeds, a second call for the same id yields
// ErrNotFound. Cleanup of environment back-references, if any, is the
// environment collaborator's responsibility.
func (v *Vault) Delete(ctx context.Context, caller Identity, companyID, credentialID string) error {
	if err := v.authorize(caller, companyID); err != nil {
		return err
	}

	matched, err := v.store.Delete(ctx, companyID, credentialID)
	if err != nil {
		return storageError("delete credential", err)
	}
	if !matched {
		return fmt.Errorf("%w: id %s", ErrNotFound, credentialID)
	}
	return nil
}
