package credvault

import (
	"fmt"

	"github.com/hengadev/errsx"
)

// Storage backend identifiers accepted by Config.
const (
	StorageBackendSQLite = "sqlite"
	StorageBackendS3     = "s3"
)

// Config holds the deployment configuration of a vault instance. It contains
// only data, no behavior; it can be loaded from the environment
// (LoadConfigFromEnvironment), from a YAML file (LoadConfigFromFile), or
// built in code and passed around explicitly.
//
// The encryption key itself is never part of Config: key material flows
// through a KeyProvider (see providers/) so it cannot end up serialized in a
// config file.
type Config struct {
	// Storage selects and parameterizes the credential store backend.
	Storage StorageConfig `yaml:"storage"`

	// Mask parameterizes the masking policy. Zero value means
	// DefaultMaskPolicy.
	Mask MaskConfig `yaml:"mask"`

	// CredentialTypes extends the provider→credential-type mapping, e.g.
	// "oracle: Cloud Account". Built-ins (aws, gcp, azure) stay available.
	CredentialTypes map[string]string `yaml:"credential_types"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is one of StorageBackendSQLite or StorageBackendS3.
	Backend string `yaml:"backend"`

	// Path is the SQLite database file. Used when Backend is "sqlite".
	Path string `yaml:"path"`

	// Bucket and Prefix locate records in S3. Used when Backend is "s3".
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// Region overrides the AWS region for the S3 backend. Optional.
	Region string `yaml:"region"`
}

// MaskConfig is the serializable form of MaskPolicy.
type MaskConfig struct {
	PrefixLen int    `yaml:"prefix_len"`
	SuffixLen int    `yaml:"suffix_len"`
	MaskWidth int    `yaml:"mask_width"`
	MaskChar  string `yaml:"mask_char"`
	Threshold int    `yaml:"threshold"`
}

// Policy converts the config into a MaskPolicy, falling back to the default
// policy when the config is zero.
func (m MaskConfig) Policy() MaskPolicy {
	if m == (MaskConfig{}) {
		return DefaultMaskPolicy()
	}
	policy := MaskPolicy{
		PrefixLen: m.PrefixLen,
		SuffixLen: m.SuffixLen,
		MaskWidth: m.MaskWidth,
		Threshold: m.Threshold,
	}
	for _, r := range m.MaskChar {
		policy.MaskChar = r
		break
	}
	return policy.normalized()
}

// Validate checks the configuration and applies defaults for optional
// fields. It returns an error describing every problem found, not just the
// first.
func (c *Config) Validate() error {
	var errs errsx.Map

	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = StorageBackendSQLite
	case StorageBackendSQLite, StorageBackendS3:
	default:
		errs.Set("storage.backend", fmt.Sprintf("unknown backend %q", c.Storage.Backend))
	}

	if c.Storage.Backend == StorageBackendSQLite && c.Storage.Path == "" {
		c.Storage.Path = DefaultDBPath
	}
	if c.Storage.Backend == StorageBackendS3 && c.Storage.Bucket == "" {
		errs.Set("storage.bucket", "bucket is required for the s3 backend")
	}

	if errs.IsEmpty() {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfiguration, errs.AsError())
}
