// Package awskms provisions the vault keyring from AWS KMS.
//
// The vault key never lives in KMS itself: an operator generates a data key
// under a KMS customer master key (GenerateWrappedKey), stores the wrapped
// ciphertext blob in configuration, and the provider unwraps it with KMS
// Decrypt at process start. KMS being unreachable at startup is fatal, the
// same as a missing key.
package awskms

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/hengadev/credvault"
)

// kmsClient is the subset of the KMS API the provider uses (allows mocking).
type kmsClient interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
	GenerateDataKey(ctx context.Context, params *kms.GenerateDataKeyInput, optFns ...func(*kms.Options)) (*kms.GenerateDataKeyOutput, error)
}

// Config holds configuration for the KMS provider.
type Config struct {
	// Region is the AWS region (e.g. "us-east-1"). If empty, the AWS SDK's
	// usual resolution (environment, config file) applies.
	Region string

	// AWSConfig is an optional pre-configured AWS config. If provided,
	// Region is ignored.
	AWSConfig *aws.Config

	// WrappedKey is the base64-encoded ciphertext blob of the active data
	// key, produced by GenerateWrappedKey. Required.
	WrappedKey string

	// RetiredWrappedKeys optionally maps older key versions to their
	// wrapped blobs, kept decrypt-only after rotation. The active key is
	// version max(retired)+1, or 1 when there are none.
	RetiredWrappedKeys map[int]string
}

// Provider implements credvault.KeyProvider over AWS KMS.
type Provider struct {
	client kmsClient
	cfg    Config
}

// New creates a KMS-backed key provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.WrappedKey) == "" {
		return nil, fmt.Errorf("%w: wrapped key blob is required", credvault.ErrKeyUnavailable)
	}

	var awsCfg aws.Config
	var err error
	if cfg.AWSConfig != nil {
		awsCfg = *cfg.AWSConfig
	} else {
		opts := []func(*awsconfig.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: load AWS config: %v", credvault.ErrKeyUnavailable, err)
		}
	}

	return &Provider{client: kms.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// ProvisionKeyring unwraps the configured data keys through KMS Decrypt and
// assembles the keyring.
func (p *Provider) ProvisionKeyring(ctx context.Context) (credvault.Keyring, error) {
	activeVersion := 1
	for version := range p.cfg.RetiredWrappedKeys {
		if version >= activeVersion {
			activeVersion = version + 1
		}
	}

	keys := make(map[int][]byte, len(p.cfg.RetiredWrappedKeys)+1)
	active, err := p.unwrap(ctx, p.cfg.WrappedKey)
	if err != nil {
		return credvault.Keyring{}, fmt.Errorf("unwrap active key: %w", err)
	}
	keys[activeVersion] = active

	for version, wrapped := range p.cfg.RetiredWrappedKeys {
		key, err := p.unwrap(ctx, wrapped)
		if err != nil {
			return credvault.Keyring{}, fmt.Errorf("unwrap retired key version %d: %w", version, err)
		}
		keys[version] = key
	}

	return credvault.NewKeyring(activeVersion, keys)
}

func (p *Provider) unwrap(ctx context.Context, wrapped string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapped key is not valid base64", credvault.ErrKeyUnavailable)
	}
	out, err := p.client.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob})
	if err != nil {
		return nil, fmt.Errorf("%w: KMS decrypt: %v", credvault.ErrKeyUnavailable, err)
	}
	return out.Plaintext, nil
}

// GenerateWrappedKey asks KMS for a fresh 256-bit data key under the given
// customer master key and returns the wrapped blob, base64 encoded, for
// storage in configuration. The plaintext half is discarded; the running
// service recovers it through ProvisionKeyring.
func (p *Provider) GenerateWrappedKey(ctx context.Context, keyID string) (string, error) {
	out, err := p.client.GenerateDataKey(ctx, &kms.GenerateDataKeyInput{
		KeyId:   aws.String(keyID),
		KeySpec: types.DataKeySpecAes256,
	})
	if err != nil {
		return "", fmt.Errorf("generate data key under %s: %w", keyID, err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}
