package credvault

import (
	"context"
	"fmt"
)

// List returns every credential owned by the target company, with field
// values decrypted and then masked. Order is storage-defined.
//
// A decrypt failure on any record fails the whole listing: a partially
// wrong result would hide data damage, and the error names the offending
// record id so an operator can find it. The error carries no field content.
func (v *Vault) List(ctx context.Context, caller Identity, companyID string) ([]Credential, error) {
	if err := v.authorize(caller, companyID); err != nil {
		return nil, err
	}

	records, err := v.store.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, storageError("list credentials", err)
	}

	credentials := make([]Credential, 0, len(records))
	for i := range records {
		record := &records[i]
		fields, err := v.engine.DecryptFields(record.EncryptedFields)
		if err != nil {
			return nil, fmt.Errorf("credential %s: %w", record.ID, err)
		}
		credentials = append(credentials, record.view(v.mask.Mask(fields)))
	}
	return credentials, nil
}
