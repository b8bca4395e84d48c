package credvault

import (
	"context"
	"fmt"
)

// AssignEnvironments replaces the credential's environment set in full and
// bumps its updated_at. This is replace, not merge: a caller that wants to
// add one environment must resupply the whole desired set. Repeated calls
// with the same set are idempotent with respect to final state.
//
// A credential that does not exist under the target company yields
// ErrNotFound, whether it never existed or belongs to another company.
func (v *Vault) AssignEnvironments(ctx context.Context, caller Identity, companyID, credentialID string, environments []string) error {
	if err := v.authorize(caller, companyID); err != nil {
		return err
	}
	for _, env := range environments {
		if env == "" {
			return fmt.Errorf("%w: environment ids must not be empty", ErrInvalidInput)
		}
	}

	if _, err := v.findRecord(ctx, companyID, credentialID); err != nil {
		return err
	}

	envs := make([]string, len(environments))
	copy(envs, environments)

	matched, err := v.store.UpdateEnvironments(ctx, companyID, credentialID, envs, v.now())
	if err != nil {
		return storageError("update environments", err)
	}
	if !matched {
		// Deleted between the existence check and the update.
		return fmt.Errorf("%w: id %s", ErrNotFound, credentialID)
	}
	return nil
}
