// Package store persists verification records. Records hold scores, match
// classifications and salted identity hashes; they never hold field values.
package store

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"docverify/internal/document/crossval"
)

// VerificationRecord is the persisted outcome of one verification.
type VerificationRecord struct {
	ID             uuid.UUID `json:"id"`
	DocumentKind   string    `json:"document_kind"`
	DocumentFormat string    `json:"document_format,omitempty"`

	ParseConfidence  float64 `json:"parse_confidence"`
	CheckDigitsValid bool    `json:"check_digits_valid"`

	Score                   float64 `json:"score"`
	IsValid                 bool    `json:"is_valid"`
	Confidence              float64 `json:"confidence"`
	TrustContribution       float64 `json:"trust_contribution"`
	RequiredFieldsSatisfied bool    `json:"required_fields_satisfied"`

	ExactMatches   int `json:"exact_matches"`
	FuzzyMatches   int `json:"fuzzy_matches"`
	PartialMatches int `json:"partial_matches"`
	Mismatches     int `json:"mismatches"`
	MissingFields  int `json:"missing_fields"`
	ComparedFields int `json:"compared_fields"`

	FieldMatches []crossval.FieldMatch `json:"field_matches"`

	IdentityHash string            `json:"identity_hash"`
	FieldHashes  map[string]string `json:"field_hashes"`

	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// clone returns a deep copy so callers cannot mutate stored state.
func (r *VerificationRecord) clone() *VerificationRecord {
	out := *r
	out.FieldMatches = append([]crossval.FieldMatch(nil), r.FieldMatches...)
	if r.FieldHashes != nil {
		out.FieldHashes = make(map[string]string, len(r.FieldHashes))
		for k, v := range r.FieldHashes {
			out.FieldHashes[k] = v
		}
	}
	return &out
}

// sortByCreatedAt orders records oldest first, breaking ties by ID.
func sortByCreatedAt(records []*VerificationRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID.String() < records[j].ID.String()
	})
}
