// Package s3 implements the credential store on Amazon S3 (or any
// S3-compatible object store). Each record is one JSON object under
// <prefix>companies/<company_id>/<id>.json; records reaching this package
// already carry their fields as ciphertext, so the objects hold no
// plaintext secrets.
//
// Updates are read-modify-write: concurrent writers to the same record race
// with last-write-wins semantics, which the vault accepts by design.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hengadev/credvault"
)

// Compile-time interface satisfaction check.
var _ credvault.CredentialStore = (*Store)(nil)

// s3Client is the subset of the S3 API the store uses (allows mocking).
type s3Client interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

// Config holds configuration for the S3 store.
type Config struct {
	// Bucket is the bucket holding credential objects. Required.
	Bucket string

	// Prefix is prepended to every object key. Optional; a trailing slash
	// is added if missing.
	Prefix string

	// Region is the AWS region. If empty, the AWS SDK's usual resolution
	// applies.
	Region string

	// AWSConfig is an optional pre-configured AWS config. If provided,
	// Region is ignored.
	AWSConfig *aws.Config
}

// Store is the S3 implementation of credvault.CredentialStore.
type Store struct {
	client s3Client
	bucket string
	prefix string
}

// New creates an S3-backed store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", credvault.ErrInvalidConfiguration)
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
			return nil, fmt.Errorf("%w: load AWS config: %v", credvault.ErrStorageUnavailable, err)
		}
	}

	return NewWithClient(awss3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing S3 client. Intended for tests and for
// S3-compatible endpoints configured by the caller.
func NewWithClient(client s3Client, bucket, prefix string) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) key(companyID, credentialID string) string {
	return fmt.Sprintf("%scompanies/%s/%s.json", s.prefix, companyID, credentialID)
}

func (s *Store) companyPrefix(companyID string) string {
	return fmt.Sprintf("%scompanies/%s/", s.prefix, companyID)
}

func (s *Store) Insert(ctx context.Context, record *credvault.CredentialRecord) error {
	return s.put(ctx, record)
}

func (s *Store) FindByCompany(ctx context.Context, companyID string) ([]credvault.CredentialRecord, error) {
	var records []credvault.CredentialRecord
	var continuation *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.companyPrefix(companyID)),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list credentials: %v", credvault.ErrStorageUnavailable, err)
		}
		for _, object := range page.Contents {
			if object.Key == nil {
				continue
			}
			record, err := s.get(ctx, *object.Key)
			if err != nil {
				return nil, err
			}
			if record != nil {
				records = append(records, *record)
			}
		}
		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		continuation = page.NextContinuationToken
	}
	return records, nil
}

func (s *Store) FindByID(ctx context.Context, companyID, credentialID string) (*credvault.CredentialRecord, error) {
	return s.get(ctx, s.key(companyID, credentialID))
}

func (s *Store) UpdateEnvironments(ctx context.Context, companyID, credentialID string, environments []string, updatedAt time.Time) (bool, error) {
	record, err := s.get(ctx, s.key(companyID, credentialID))
	if err != nil || record == nil {
		return false, err
	}
	record.Environments = append([]string(nil), environments...)
	record.UpdatedAt = updatedAt
	if err := s.put(ctx, record); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) UpdateMeta(ctx context.Context, companyID, credentialID, name string, isActive bool, updatedAt time.Time) (bool, error) {
	record, err := s.get(ctx, s.key(companyID, credentialID))
	if err != nil || record == nil {
		return false, err
	}
	record.Name = name
	record.IsActive = isActive
	record.UpdatedAt = updatedAt
	if err := s.put(ctx, record); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, companyID, credentialID string) (bool, error) {
	key := s.key(companyID, credentialID)

	// DeleteObject succeeds on missing keys, so probe first to honor the
	// found/not-found contract.
	record, err := s.get(ctx, key)
	if err != nil || record == nil {
		return false, err
	}

	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return false, fmt.Errorf("%w: delete credential: %v", credvault.ErrStorageUnavailable, err)
	}
	return true, nil
}

func (s *Store) put(ctx context.Context, record *credvault.CredentialRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode credential: %v", credvault.ErrStorageUnavailable, err)
	}
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(record.CompanyID, record.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%w: put credential: %v", credvault.ErrStorageUnavailable, err)
	}
	return nil
}

// get returns (nil, nil) when the object does not exist.
func (s *Store) get(ctx context.Context, key string) (*credvault.CredentialRecord, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get credential: %v", credvault.ErrStorageUnavailable, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read credential object: %v", credvault.ErrStorageUnavailable, err)
	}
	var record credvault.CredentialRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: decode credential object %s: %v", credvault.ErrStorageUnavailable, key, err)
	}
	return &record, nil
}
