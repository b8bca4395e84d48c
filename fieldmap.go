package credvault

// FieldMap holds the sensitive fields of a credential, keyed by field name
// (e.g. "access_key_id", "secret_access_key"). Values are plaintext only in
// the narrow window between a create call and encryption, or between
// decryption and masking; a FieldMap must never be logged or persisted.
type FieldMap map[string]string

// Clone returns an independent copy of the map. A nil map clones to nil.
func (f FieldMap) Clone() FieldMap {
	if f == nil {
		return nil
	}
	out := make(FieldMap, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
