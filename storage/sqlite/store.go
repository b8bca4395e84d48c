// Package sqlite implements the credential store on SQLite via database/sql.
// Ciphertext envelopes are stored as TEXT and round-trip byte for byte; the
// environment set is stored as a JSON array column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hengadev/credvault"
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time interface satisfaction check.
var _ credvault.CredentialStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	id               TEXT PRIMARY KEY,
	company_id       TEXT NOT NULL,
	name             TEXT NOT NULL,
	provider         TEXT NOT NULL,
	credential_type  TEXT NOT NULL,
	encrypted_fields TEXT NOT NULL,
	is_active        INTEGER NOT NULL DEFAULT 1,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	last_used        TEXT,
	environments     TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_credentials_company ON credentials(company_id);
`

// Store is the SQLite implementation of credvault.CredentialStore.
type Store struct {
	db *sql.DB
}

// Open opens (and creates, if needed) the database at path and bootstraps
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database %s: %v", credvault.ErrStorageUnavailable, path, err)
	}
	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing database handle and bootstraps the schema.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: create schema: %v", credvault.ErrStorageUnavailable, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Insert(ctx context.Context, record *credvault.CredentialRecord) error {
	environments, err := encodeEnvironments(record.Environments)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials
			(id, company_id, name, provider, credential_type, encrypted_fields,
			 is_active, created_at, updated_at, last_used, environments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CompanyID, record.Name, record.Provider,
		record.CredentialType, record.EncryptedFields, record.IsActive,
		encodeTime(record.CreatedAt), encodeTime(record.UpdatedAt),
		encodeNullableTime(record.LastUsed), environments,
	)
	if err != nil {
		return fmt.Errorf("%w: insert credential: %v", credvault.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) FindByCompany(ctx context.Context, companyID string) ([]credvault.CredentialRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, name, provider, credential_type, encrypted_fields,
		       is_active, created_at, updated_at, last_used, environments
		FROM credentials
		WHERE company_id = ?
		ORDER BY created_at, id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query credentials: %v", credvault.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []credvault.CredentialRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate credentials: %v", credvault.ErrStorageUnavailable, err)
	}
	return records, nil
}

func (s *Store) FindByID(ctx context.Context, companyID, credentialID string) (*credvault.CredentialRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, provider, credential_type, encrypted_fields,
		       is_active, created_at, updated_at, last_used, environments
		FROM credentials
		WHERE id = ? AND company_id = ?`,
		credentialID, companyID,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) UpdateEnvironments(ctx context.Context, companyID, credentialID string, environments []string, updatedAt time.Time) (bool, error) {
	encoded, err := encodeEnvironments(environments)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET environments = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`,
		encoded, encodeTime(updatedAt), credentialID, companyID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: update environments: %v", credvault.ErrStorageUnavailable, err)
	}
	return affected(res)
}

func (s *Store) UpdateMeta(ctx context.Context, companyID, credentialID, name string, isActive bool, updatedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET name = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`,
		name, isActive, encodeTime(updatedAt), credentialID, companyID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: update credential: %v", credvault.ErrStorageUnavailable, err)
	}
	return affected(res)
}

func (s *Store) Delete(ctx context.Context, companyID, credentialID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM credentials WHERE id = ? AND company_id = ?`,
		credentialID, companyID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: delete credential: %v", credvault.ErrStorageUnavailable, err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", credvault.ErrStorageUnavailable, err)
	}
	return n > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*credvault.CredentialRecord, error) {
	var record credvault.CredentialRecord
	var createdAt, updatedAt, environments string
	var lastUsed sql.NullString
	err := row.Scan(
		&record.ID, &record.CompanyID, &record.Name, &record.Provider,
		&record.CredentialType, &record.EncryptedFields, &record.IsActive,
		&createdAt, &updatedAt, &lastUsed, &environments,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan credential: %v", credvault.ErrStorageUnavailable, err)
	}

	if record.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("%w: credential %s: %v", credvault.ErrStorageUnavailable, record.ID, err)
	}
	if record.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("%w: credential %s: %v", credvault.ErrStorageUnavailable, record.ID, err)
	}
	if lastUsed.Valid {
		t, err := decodeTime(lastUsed.String)
		if err != nil {
			return nil, fmt.Errorf("%w: credential %s: %v", credvault.ErrStorageUnavailable, record.ID, err)
		}
		record.LastUsed = &t
	}
	if err := json.Unmarshal([]byte(environments), &record.Environments); err != nil {
		return nil, fmt.Errorf("%w: credential %s: decode environments: %v", credvault.ErrStorageUnavailable, record.ID, err)
	}
	if record.Environments == nil {
		record.Environments = []string{}
	}
	return &record, nil
}

func encodeEnvironments(environments []string) (string, error) {
	if environments == nil {
		environments = []string{}
	}
	data, err := json.Marshal(environments)
	if err != nil {
		return "", fmt.Errorf("%w: encode environments: %v", credvault.ErrStorageUnavailable, err)
	}
	return string(data), nil
}

// Timestamps are stored as RFC 3339 with nanoseconds so they round-trip
// exactly.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %v", s, err)
	}
	return t, nil
}
