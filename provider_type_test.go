package credvault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hengadev/credvault"
)

func TestTypeResolverDefaults(t *testing.T) {
	resolver := credvault.NewTypeResolver(nil)

	tests := []struct {
		provider string
		want     string
	}{
		{provider: "aws", want: "Access Key"},
		{provider: "gcp", want: "Service Account"},
		{provider: "azure", want: "Service Principal"},
		{provider: "oracle", want: credvault.UnknownCredentialType},
		{provider: "AWS", want: credvault.UnknownCredentialType},
		{provider: "", want: credvault.UnknownCredentialType},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.provider))
		})
	}
}

func TestTypeResolverExtraEntries(t *testing.T) {
	resolver := credvault.NewTypeResolver(map[string]string{
		"oracle": "API Signing Key",
		"aws":    "IAM Role", // overrides the built-in
	})

	assert.Equal(t, "API Signing Key", resolver.Resolve("oracle"))
	assert.Equal(t, "IAM Role", resolver.Resolve("aws"))
	assert.Equal(t, "Service Account", resolver.Resolve("gcp"))
}
