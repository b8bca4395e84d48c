package hashivault

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
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

func TestDecodeKeyring(t *testing.T) {
	t.Run("map-shaped keys with json.Number version", func(t *testing.T) {
		// The shape KV v2 returns for a JSON write.
		data := map[string]interface{}{
			"active": json.Number("2"),
			"keys": map[string]interface{}{
				"1": hexKey(t),
				"2": hexKey(t),
			},
		}

		keyring, err := decodeKeyring(data)
		require.NoError(t, err)
		assert.Equal(t, 2, keyring.ActiveVersion())
		assert.Equal(t, 2, keyring.Versions())
	})

	t.Run("string-shaped keys from a CLI write", func(t *testing.T) {
		// `vault kv put ... active=1 keys='{"1":"<hex>"}'` stores strings.
		data := map[string]interface{}{
			"active": "1",
			"keys":   fmt.Sprintf(`{"1":%q}`, hexKey(t)),
		}

		keyring, err := decodeKeyring(data)
		require.NoError(t, err)
		assert.Equal(t, 1, keyring.ActiveVersion())
	})

	t.Run("float64 version", func(t *testing.T) {
		data := map[string]interface{}{
			"active": float64(1),
			"keys":   map[string]interface{}{"1": hexKey(t)},
		}

		keyring, err := decodeKeyring(data)
		require.NoError(t, err)
		assert.Equal(t, 1, keyring.ActiveVersion())
	})
}

func TestDecodeKeyringFailures(t *testing.T) {
	valid := hexKey(t)

	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{
			name: "missing active",
			data: map[string]interface{}{"keys": map[string]interface{}{"1": valid}},
		},
		{
			name: "active not a number",
			data: map[string]interface{}{"active": "two", "keys": map[string]interface{}{"1": valid}},
		},
		{
			name: "missing keys",
			data: map[string]interface{}{"active": "1"},
		},
		{
			name: "key version not numeric",
			data: map[string]interface{}{"active": "1", "keys": map[string]interface{}{"one": valid}},
		},
		{
			name: "key not hex",
			data: map[string]interface{}{"active": "1", "keys": map[string]interface{}{"1": "not-hex"}},
		},
		{
			name: "key wrong size",
			data: map[string]interface{}{"active": "1", "keys": map[string]interface{}{"1": "abcd"}},
		},
		{
			name: "active version absent from keys",
			data: map[string]interface{}{"active": "2", "keys": map[string]interface{}{"1": valid}},
		},
		{
			name: "keys value has wrong type",
			data: map[string]interface{}{"active": "1", "keys": 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeKeyring(tt.data)
			require.Error(t, err)
			assert.True(t, credvault.IsConfigurationError(err),
				"a broken keyring secret must be fatal at startup")
		})
	}
}
