package credvault

// Test utilities: an in-memory credential store, a static key provider, and
// constructors that wire them together. Suitable for unit tests and
// examples; all data is lost when the process exits.

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StaticKeyProvider is a KeyProvider that hands back a fixed keyring.
type StaticKeyProvider struct {
	Keyring Keyring
}

// ProvisionKeyring returns the fixed keyring.
func (p StaticKeyProvider) ProvisionKeyring(ctx context.Context) (Keyring, error) {
	if p.Keyring.Versions() == 0 {
		return Keyring{}, fmt.Errorf("%w: static provider holds no keys", ErrKeyUnavailable)
	}
	return p.Keyring, nil
}

// MemoryStore is an in-memory CredentialStore. Records are returned in
// insertion order. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*CredentialRecord
	failErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*CredentialRecord)}
}

// FailWith makes every subsequent operation return err, simulating a storage
// outage. Pass nil to heal the store.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Record returns a copy of the stored record with the given id, regardless
// of company. Test inspection helper, not part of CredentialStore.
func (s *MemoryStore) Record(id string) (CredentialRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return CredentialRecord{}, false
	}
	return cloneRecord(record), true
}

func (s *MemoryStore) Insert(ctx context.Context, record *CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("duplicate credential id %s", record.ID)
	}
	stored := cloneRecord(record)
	s.records[record.ID] = &stored
	s.order = append(s.order, record.ID)
	return nil
}

func (s *MemoryStore) FindByCompany(ctx context.Context, companyID string) ([]CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	var out []CredentialRecord
	for _, id := range s.order {
		record := s.records[id]
		if record != nil && record.CompanyID == companyID {
			out = append(out, cloneRecord(record))
		}
	}
	return out, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, companyID, credentialID string) (*CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	record, ok := s.records[credentialID]
	if !ok || record.CompanyID != companyID {
		return nil, nil
	}
	out := cloneRecord(record)
	return &out, nil
}

func (s *MemoryStore) UpdateEnvironments(ctx context.Context, companyID, credentialID string, environments []string, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, s.failErr
	}
	record, ok := s.records[credentialID]
	if !ok || record.CompanyID != companyID {
		return false, nil
	}
	record.Environments = append([]string(nil), environments...)
	record.UpdatedAt = updatedAt
	return true, nil
}

func (s *MemoryStore) UpdateMeta(ctx context.Context, companyID, credentialID, name string, isActive bool, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, s.failErr
	}
	record, ok := s.records[credentialID]
	if !ok || record.CompanyID != companyID {
		return false, nil
	}
	record.Name = name
	record.IsActive = isActive
	record.UpdatedAt = updatedAt
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, companyID, credentialID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, s.failErr
	}
	record, ok := s.records[credentialID]
	if !ok || record.CompanyID != companyID {
		return false, nil
	}
	delete(s.records, credentialID)
	for i, id := range s.order {
		if id == credentialID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func cloneRecord(record *CredentialRecord) CredentialRecord {
	out := *record
	out.Environments = append([]string(nil), record.Environments...)
	if record.LastUsed != nil {
		lastUsed := *record.LastUsed
		out.LastUsed = &lastUsed
	}
	return out
}

// NewTestEngine creates an Engine over a freshly generated single-key
// keyring.
func NewTestEngine() (*Engine, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return nil, err
	}
	keyring, err := SingleKeyring(key)
	if err != nil {
		return nil, err
	}
	return NewEngine(keyring)
}

// NewTestVault creates a Vault over a fresh test engine and an empty
// in-memory store. The store is returned for inspection.
func NewTestVault(opts ...Option) (*Vault, *MemoryStore, error) {
	engine, err := NewTestEngine()
	if err != nil {
		return nil, nil, fmt.Errorf("create test engine: %w", err)
	}
	store := NewMemoryStore()
	vault, err := New(engine, store, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create test vault: %w", err)
	}
	return vault, store, nil
}
