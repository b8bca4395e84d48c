// Package storage opens the credential store selected by a vault Config.
package storage

import (
	"context"
	"fmt"

	"github.com/hengadev/credvault"
	"github.com/hengadev/credvault/storage/s3"
	"github.com/hengadev/credvault/storage/sqlite"
)

// Open builds the CredentialStore named by cfg.Storage. The config should
// already be validated.
func Open(ctx context.Context, cfg credvault.Config) (credvault.CredentialStore, error) {
	switch cfg.Storage.Backend {
	case "", credvault.StorageBackendSQLite:
		path := cfg.Storage.Path
		if path == "" {
			path = credvault.DefaultDBPath
		}
		return sqlite.Open(path)
	case credvault.StorageBackendS3:
		return s3.New(ctx, s3.Config{
			Bucket: cfg.Storage.Bucket,
			Prefix: cfg.Storage.Prefix,
			Region: cfg.Storage.Region,
		})
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", credvault.ErrInvalidConfiguration, cfg.Storage.Backend)
	}
}
