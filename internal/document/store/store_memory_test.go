package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"docverify/internal/document/crossval"
	"docverify/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func testRecord(hash string, createdAt time.Time) *VerificationRecord {
	return &VerificationRecord{
		ID:           uuid.New(),
		DocumentKind: "mrz",
		Score:        0.92,
		IsValid:      true,
		FieldMatches: []crossval.FieldMatch{{FieldName: "surname", Classification: crossval.MatchExact, Similarity: 1}},
		IdentityHash: hash,
		FieldHashes:  map[string]string{"surname": "abc"},
		CreatedAt:    createdAt,
	}
}

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	record := testRecord("h1", time.Now())
	s.Require().NoError(s.store.Save(s.ctx, record))

	found, err := s.store.FindByID(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record, found)

	s.Run("returned copy is detached", func() {
		found.FieldHashes["surname"] = "mutated"
		found.FieldMatches[0].Similarity = 0
		again, err := s.store.FindByID(s.ctx, record.ID)
		s.Require().NoError(err)
		s.Equal("abc", again.FieldHashes["surname"])
		s.InDelta(1.0, again.FieldMatches[0].Similarity, 1e-9)
	})
}

func (s *InMemoryStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDuplicateID() {
	record := testRecord("h1", time.Now())
	s.Require().NoError(s.store.Save(s.ctx, record))
	s.ErrorIs(s.store.Save(s.ctx, record), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestNilRecord() {
	s.Error(s.store.Save(s.ctx, nil))
}

func (s *InMemoryStoreSuite) TestListByIdentityHash() {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	later := testRecord("h1", base.Add(time.Minute))
	earlier := testRecord("h1", base)
	other := testRecord("h2", base)
	for _, r := range []*VerificationRecord{later, earlier, other} {
		s.Require().NoError(s.store.Save(s.ctx, r))
	}

	records, err := s.store.ListByIdentityHash(s.ctx, "h1")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(earlier.ID, records[0].ID)
	s.Equal(later.ID, records[1].ID)

	none, err := s.store.ListByIdentityHash(s.ctx, "unknown")
	s.Require().NoError(err)
	s.Empty(none)
}
