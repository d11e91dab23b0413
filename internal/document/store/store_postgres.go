package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"docverify/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS document_verifications (
	id                        UUID PRIMARY KEY,
	document_kind             TEXT NOT NULL,
	document_format           TEXT NOT NULL DEFAULT '',
	parse_confidence          DOUBLE PRECISION NOT NULL,
	check_digits_valid        BOOLEAN NOT NULL,
	score                     DOUBLE PRECISION NOT NULL,
	is_valid                  BOOLEAN NOT NULL,
	confidence                DOUBLE PRECISION NOT NULL,
	trust_contribution        DOUBLE PRECISION NOT NULL,
	required_fields_satisfied BOOLEAN NOT NULL,
	exact_matches             INTEGER NOT NULL,
	fuzzy_matches             INTEGER NOT NULL,
	partial_matches           INTEGER NOT NULL,
	mismatches                INTEGER NOT NULL,
	missing_fields            INTEGER NOT NULL,
	compared_fields           INTEGER NOT NULL,
	field_matches             JSONB NOT NULL,
	identity_hash             TEXT NOT NULL,
	field_hashes              JSONB NOT NULL,
	request_id                TEXT NOT NULL DEFAULT '',
	created_at                TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_document_verifications_identity
	ON document_verifications (identity_hash, created_at);
`

const selectColumns = `id, document_kind, document_format, parse_confidence, check_digits_valid,
	score, is_valid, confidence, trust_contribution, required_fields_satisfied,
	exact_matches, fuzzy_matches, partial_matches, mismatches, missing_fields, compared_fields,
	field_matches, identity_hash, field_hashes, request_id, created_at`

// PostgresStore persists verification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed store. Call Migrate once
// before use.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the verification table when it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate document_verifications: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, record *VerificationRecord) error {
	if record == nil {
		return fmt.Errorf("verification record is required")
	}
	matches, err := json.Marshal(record.FieldMatches)
	if err != nil {
		return fmt.Errorf("encode field matches: %w", err)
	}
	hashes, err := json.Marshal(record.FieldHashes)
	if err != nil {
		return fmt.Errorf("encode field hashes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO document_verifications (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		record.ID, record.DocumentKind, record.DocumentFormat, record.ParseConfidence, record.CheckDigitsValid,
		record.Score, record.IsValid, record.Confidence, record.TrustContribution, record.RequiredFieldsSatisfied,
		record.ExactMatches, record.FuzzyMatches, record.PartialMatches, record.Mismatches, record.MissingFields, record.ComparedFields,
		string(matches), record.IdentityHash, string(hashes), record.RequestID, record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("save verification %s: %w", record.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("save verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*VerificationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM document_verifications WHERE id = $1`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByIdentityHash(ctx context.Context, hash string) ([]*VerificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+`
		FROM document_verifications WHERE identity_hash = $1 ORDER BY created_at, id`, hash)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []*VerificationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*VerificationRecord, error) {
	var (
		r               VerificationRecord
		matches, hashes []byte
	)
	err := row.Scan(
		&r.ID, &r.DocumentKind, &r.DocumentFormat, &r.ParseConfidence, &r.CheckDigitsValid,
		&r.Score, &r.IsValid, &r.Confidence, &r.TrustContribution, &r.RequiredFieldsSatisfied,
		&r.ExactMatches, &r.FuzzyMatches, &r.PartialMatches, &r.Mismatches, &r.MissingFields, &r.ComparedFields,
		&matches, &r.IdentityHash, &hashes, &r.RequestID, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(matches, &r.FieldMatches); err != nil {
		return nil, fmt.Errorf("decode field matches: %w", err)
	}
	if err := json.Unmarshal(hashes, &r.FieldHashes); err != nil {
		return nil, fmt.Errorf("decode field hashes: %w", err)
	}
	return &r, nil
}
