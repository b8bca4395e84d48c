package envkey

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/credvault"
)

func hexKey(t *testing.T) string {
	t.Helper()
	key, err := credvault.GenerateEncryptionKey()
	require.NoError(t, err)
	return hex.EncodeToString(key)
}

func TestProvisionKeyring(t *testing.T) {
	t.Run("plain key is version 1", func(t *testing.T) {
		t.Setenv(EnvEncryptionKey, hexKey(t))

		keyring, err := Provider{}.ProvisionKeyring(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, keyring.ActiveVersion())
		assert.Equal(t, 1, keyring.Versions())
	})

	t.Run("version-tagged key", func(t *testing.T) {
		t.Setenv(EnvEncryptionKey, "3:"+hexKey(t))

		keyring, err := Provider{}.ProvisionKeyring(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, keyring.ActiveVersion())
	})

	t.Run("retired keys extend the ring", func(t *testing.T) {
		t.Setenv(EnvEncryptionKey, "3:"+hexKey(t))
		t.Setenv(EnvRetiredKeys, "1:"+hexKey(t)+" , 2:"+hexKey(t))

		keyring, err := Provider{}.ProvisionKeyring(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, keyring.ActiveVersion())
		assert.Equal(t, 3, keyring.Versions())
	})

	t.Run("custom variable names", func(t *testing.T) {
		t.Setenv("MY_KEY", hexKey(t))

		keyring, err := Provider{KeyVar: "MY_KEY"}.ProvisionKeyring(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, keyring.ActiveVersion())
	})
}

func TestProvisionKeyringFailures(t *testing.T) {
	valid := hexKey(t)

	tests := []struct {
		name    string
		key     string
		retired string
		errPart string
	}{
		{
			name:    "key not set",
			key:     "",
			errPart: "not set",
		},
		{
			name:    "key not hex",
			key:     "zz" + valid[2:],
			errPart: "not valid hex",
		},
		{
			name:    "key too short",
			key:     valid[:32],
			errPart: "32 bytes",
		},
		{
			name:    "bad version tag",
			key:     "v1:" + valid,
			errPart: "version tag",
		},
		{
			name:    "retired key without version tag",
			key:     valid,
			retired: strings.Repeat("ab", credvault.KeySize),
			errPart: "version tag",
		},
		{
			name:    "duplicate retired version",
			key:     "2:" + valid,
			retired: "2:" + strings.Repeat("ab", credvault.KeySize),
			errPart: "duplicate",
		},
		{
			name:    "malformed retired entry",
			key:     valid,
			retired: "2:nothex",
			errPart: "hex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvEncryptionKey, tt.key)
			t.Setenv(EnvRetiredKeys, tt.retired)

			_, err := Provider{}.ProvisionKeyring(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, credvault.ErrKeyUnavailable,
				"provisioning failures must be fatal-at-startup errors")
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestProvisionedKeyringDrivesEngine(t *testing.T) {
	t.Setenv(EnvEncryptionKey, hexKey(t))

	engine, err := credvault.NewEngineFromProvider(context.Background(), Provider{})
	require.NoError(t, err)

	envelope, err := engine.EncryptFields(credvault.FieldMap{"token": "abc"})
	require.NoError(t, err)
	fields, err := engine.DecryptFields(envelope)
	require.NoError(t, err)
	assert.Equal(t, "abc", fields["token"])
}
