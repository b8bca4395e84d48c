package s3

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/credvault"
)

// fakeS3 is an in-memory bucket. Listing returns pageSize keys per call so
// pagination is exercised.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	failErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, pageSize: 2}
}

func (f *fakeS3) PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	delete(f.objects, *params.Key)
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}

	var keys []string
	for key := range f.objects {
		if params.Prefix == nil || strings.HasPrefix(key, *params.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if params.ContinuationToken != nil {
		for i, key := range keys {
			if key > *params.ContinuationToken {
				start = i
				break
			}
		}
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end-1])
	}
	return out, nil
}

func testStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	return NewWithClient(fake, "acme-credentials", "vault"), fake
}

func record(id, companyID string) *credvault.CredentialRecord {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &credvault.CredentialRecord{
		ID:              id,
		CompanyID:       companyID,
		Name:            "Production AWS",
		Provider:        "aws",
		CredentialType:  "Access Key",
		EncryptedFields: "k1.AAECAwQFBgcICQoLDA0ODxAREhM=",
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
		Environments:    []string{"env-prod"},
	}
}

func TestObjectKeysIncludePrefix(t *testing.T) {
	store, fake := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("cred-1", "acme")))

	_, ok := fake.objects["vault/companies/acme/cred-1.json"]
	assert.True(t, ok, "objects must live under <prefix>companies/<company>/")
}

func TestInsertFindRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	want := record("cred-1", "acme")
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.FindByID(ctx, "acme", "cred-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.EncryptedFields, got.EncryptedFields)
	assert.Equal(t, want.Environments, got.Environments)
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
}

func TestFindByIDAbsentAndCrossCompany(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("cred-1", "acme")))

	got, err := store.FindByID(ctx, "acme", "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The object key embeds the company, so another company's lookup misses.
	got, err = store.FindByID(ctx, "globex", "cred-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindByCompanyPaginates(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	// More records than the fake's page size forces continuation handling.
	ids := []string{"cred-1", "cred-2", "cred-3", "cred-4", "cred-5"}
	for _, id := range ids {
		require.NoError(t, store.Insert(ctx, record(id, "acme")))
	}
	require.NoError(t, store.Insert(ctx, record("cred-other", "globex")))

	records, err := store.FindByCompany(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, records, len(ids))

	var got []string
	for _, r := range records {
		got = append(got, r.ID)
		assert.Equal(t, "acme", r.CompanyID)
	}
	assert.ElementsMatch(t, ids, got)
}

func TestUpdateEnvironments(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("cred-1", "acme")))

	updatedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	matched, err := store.UpdateEnvironments(ctx, "acme", "cred-1", []string{"env-dev"}, updatedAt)
	require.NoError(t, err)
	assert.True(t, matched)

	got, err := store.FindByID(ctx, "acme", "cred-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"env-dev"}, got.Environments)
	assert.True(t, got.UpdatedAt.Equal(updatedAt))

	matched, err = store.UpdateEnvironments(ctx, "acme", "no-such-id", []string{"env-dev"}, updatedAt)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestUpdateMeta(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("cred-1", "acme")))

	updatedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	matched, err := store.UpdateMeta(ctx, "acme", "cred-1", "Renamed", false, updatedAt)
	require.NoError(t, err)
	assert.True(t, matched)

	got, err := store.FindByID(ctx, "acme", "cred-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.IsActive)
}

func TestDelete(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("cred-1", "acme")))

	matched, err := store.Delete(ctx, "acme", "cred-1")
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = store.Delete(ctx, "acme", "cred-1")
	require.NoError(t, err)
	assert.False(t, matched, "deleting an absent object must report no match")
}

func TestTransportFailuresAreStorageErrors(t *testing.T) {
	store, fake := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("cred-1", "acme")))
	fake.failErr = assert.AnError

	_, err := store.FindByID(ctx, "acme", "cred-1")
	assert.ErrorIs(t, err, credvault.ErrStorageUnavailable)

	_, err = store.FindByCompany(ctx, "acme")
	assert.ErrorIs(t, err, credvault.ErrStorageUnavailable)

	err = store.Insert(ctx, record("cred-2", "acme"))
	assert.ErrorIs(t, err, credvault.ErrStorageUnavailable)

	_, err = store.Delete(ctx, "acme", "cred-1")
	assert.ErrorIs(t, err, credvault.ErrStorageUnavailable)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, credvault.ErrInvalidConfiguration)
}
