package credvault

import "time"

// Identity is the authenticated caller supplied by the authentication layer.
// The vault trusts it completely and performs no independent verification.
type Identity struct {
	UserID    string
	CompanyID string
}

// CredentialRecord is the persisted form of a credential. EncryptedFields is
// an Engine envelope; the record never carries plaintext secrets.
//
// ID, CompanyID and Provider are immutable after creation. Changing the
// provider would invalidate the field schema, so it is simply not allowed.
type CredentialRecord struct {
	ID              string     `json:"id" db:"id"`
	CompanyID       string     `json:"company_id" db:"company_id"`
	Name            string     `json:"name" db:"name"`
	Provider        string     `json:"provider" db:"provider"`
	CredentialType  string     `json:"credential_type" db:"credential_type"`
	EncryptedFields string     `json:"encrypted_fields" db:"encrypted_fields"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	LastUsed        *time.Time `json:"last_used,omitempty" db:"last_used"`
	Environments    []string   `json:"environments" db:"environments"`
}

// Credential is the read-facing representation of a record. Fields holds
// masked values only; this is the only path by which field values reach a
// caller.
type Credential struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Provider       string     `json:"provider"`
	CredentialType string     `json:"credential_type"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastUsed       *time.Time `json:"last_used,omitempty"`
	Fields         FieldMap   `json:"fields"`
	Environments   []string   `json:"environments"`
}

// view builds the masked representation of a record. fields must already be
// masked by the caller.
func (r *CredentialRecord) view(fields FieldMap) Credential {
	envs := make([]string, len(r.Environments))
	copy(envs, r.Environments)
	return Credential{
		ID:             r.ID,
		Name:           r.Name,
		Provider:       r.Provider,
		CredentialType: r.CredentialType,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		LastUsed:       r.LastUsed,
		Fields:         fields,
		Environments:   envs,
	}
}
