package credvault

// UnknownCredentialType is the sentinel label for providers the resolver does
// not recognize. Creation is never blocked by an unrecognized provider; the
// sentinel keeps the ambiguity visible to the caller.
const UnknownCredentialType = "Unknown"

// defaultCredentialTypes maps a provider identifier to its human-facing
// credential-type label.
var defaultCredentialTypes = map[string]string{
	"aws":   "Access Key",
	"gcp":   "Service Account",
	"azure": "Service Principal",
}

// TypeResolver maps provider identifiers to credential-type labels. The zero
// value is not usable; construct with NewTypeResolver.
type TypeResolver struct {
	types map[string]string
}

// NewTypeResolver returns a resolver preloaded with the built-in provider
// labels. extra entries extend or override the built-ins.
func NewTypeResolver(extra map[string]string) *TypeResolver {
	types := make(map[string]string, len(defaultCredentialTypes)+len(extra))
	for k, v := range defaultCredentialTypes {
		types[k] = v
	}
	for k, v := range extra {
		types[k] = v
	}
	return &TypeResolver{types: types}
}

// Resolve returns the credential-type label for a provider, or
// UnknownCredentialType for providers it has no mapping for. It never fails.
func (r *TypeResolver) Resolve(provider string) string {
	if label, ok := r.types[provider]; ok {
		return label
	}
	return UnknownCredentialType
}
