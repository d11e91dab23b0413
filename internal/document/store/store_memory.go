package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"docverify/pkg/platform/sentinel"
)

// InMemoryStore keeps verification records in process memory.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    map[uuid.UUID]*VerificationRecord
	byIdentity map[string][]uuid.UUID
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:    make(map[uuid.UUID]*VerificationRecord),
		byIdentity: make(map[string][]uuid.UUID),
	}
}

// Save stores record. Saving an existing ID returns sentinel.ErrConflict.
func (s *InMemoryStore) Save(_ context.Context, record *VerificationRecord) error {
	if record == nil {
		return fmt.Errorf("verification record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("save verification %s: %w", record.ID, sentinel.ErrConflict)
	}
	s.records[record.ID] = record.clone()
	if record.IdentityHash != "" {
		s.byIdentity[record.IdentityHash] = append(s.byIdentity[record.IdentityHash], record.ID)
	}
	return nil
}

// FindByID returns the record or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.clone(), nil
}

// ListByIdentityHash returns all records for an identity hash, oldest first.
func (s *InMemoryStore) ListByIdentityHash(_ context.Context, hash string) ([]*VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*VerificationRecord, 0, len(s.byIdentity[hash]))
	for _, id := range s.byIdentity[hash] {
		out = append(out, s.records[id].clone())
	}
	sortByCreatedAt(out)
	return out, nil
}
