// Package hashivault provisions the vault keyring from a HashiCorp Vault
// KV v2 secret.
//
// The secret is expected to hold an "active" field naming the active key
// version and a "keys" map of version → hex-encoded 32-byte key, e.g.
//
//	vault kv put secret/credvault/keyring active=2 keys='{"1":"<hex>","2":"<hex>"}'
//
// Older versions stay in the map after rotation so existing ciphertexts
// remain decryptable.
package hashivault

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/hashicorp/vault/api"

	"github.com/hengadev/credvault"
)

// Config locates the keyring secret.
type Config struct {
	// Mount is the KV v2 mount point. Defaults to "secret".
	Mount string

	// Path is the secret path under the mount. Defaults to
	// "credvault/keyring".
	Path string
}

// Provider implements credvault.KeyProvider over HashiCorp Vault KV v2.
type Provider struct {
	client *api.Client
	mount  string
	path   string
}

// New creates a Vault-backed key provider. Address, token, namespace and
// AppRole credentials come from the standard VAULT_* environment variables.
func New(cfg Config) (*Provider, error) {
	apiConfig := api.DefaultConfig()
	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		apiConfig.Address = addr
	}
	apiConfig.HttpClient.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: create Vault client: %v", credvault.ErrKeyUnavailable, err)
	}
	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		client.SetNamespace(namespace)
	}

	// AppRole authentication when role credentials are present; otherwise
	// the client relies on VAULT_TOKEN.
	roleID := os.Getenv("VAULT_ROLE_ID")
	secretID := os.Getenv("VAULT_SECRET_ID")
	if roleID != "" && secretID != "" {
		resp, err := client.Logical().Write("auth/approle/login", map[string]interface{}{
			"role_id":   roleID,
			"secret_id": secretID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: AppRole login: %v", credvault.ErrKeyUnavailable, err)
		}
		if resp.Auth == nil {
			return nil, fmt.Errorf("%w: AppRole login returned no auth info", credvault.ErrKeyUnavailable)
		}
		client.SetToken(resp.Auth.ClientToken)
	}

	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}
	path := cfg.Path
	if path == "" {
		path = "credvault/keyring"
	}

	return &Provider{client: client, mount: mount, path: path}, nil
}

// ProvisionKeyring reads the keyring secret and decodes it.
func (p *Provider) ProvisionKeyring(ctx context.Context) (credvault.Keyring, error) {
	secret, err := p.client.KVv2(p.mount).Get(ctx, p.path)
	if err != nil {
		return credvault.Keyring{}, fmt.Errorf("%w: read %s/%s: %v", credvault.ErrKeyUnavailable, p.mount, p.path, err)
	}
	if secret == nil || secret.Data == nil {
		return credvault.Keyring{}, fmt.Errorf("%w: no keyring secret at %s/%s", credvault.ErrKeyUnavailable, p.mount, p.path)
	}
	return decodeKeyring(secret.Data)
}

func decodeKeyring(data map[string]interface{}) (credvault.Keyring, error) {
	activeVersion, err := decodeVersion(data["active"])
	if err != nil {
		return credvault.Keyring{}, fmt.Errorf("%w: active field: %v", credvault.ErrKeyUnavailable, err)
	}

	rawKeys, err := decodeKeyMap(data["keys"])
	if err != nil {
		return credvault.Keyring{}, fmt.Errorf("%w: keys field: %v", credvault.ErrKeyUnavailable, err)
	}

	keys := make(map[int][]byte, len(rawKeys))
	for tag, hexKey := range rawKeys {
		version, err := strconv.Atoi(tag)
		if err != nil {
			return credvault.Keyring{}, fmt.Errorf("%w: key version %q is not a number", credvault.ErrKeyUnavailable, tag)
		}
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return credvault.Keyring{}, fmt.Errorf("%w: key version %d is not valid hex", credvault.ErrKeyUnavailable, version)
		}
		keys[version] = key
	}

	return credvault.NewKeyring(activeVersion, keys)
}

// decodeVersion accepts the numeric shapes KV v2 hands back: JSON numbers
// arrive as json.Number, manual writes may be plain strings.
func decodeVersion(value interface{}) (int, error) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", v)
		}
		return n, nil
	case float64:
		return int(v), nil
	case nil:
		return 0, fmt.Errorf("missing")
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func decodeKeyMap(value interface{}) (map[string]string, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]string, len(v))
		for tag, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("key %q is not a string", tag)
			}
			out[tag] = s
		}
		return out, nil
	case string:
		// Stored as a JSON string, e.g. via `vault kv put keys='{...}'`.
		var out map[string]string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("not a version→key map: %v", err)
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing")
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
