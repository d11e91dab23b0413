// Package service orchestrates document verification: parse the machine
// readable source, cross-validate it against OCR output, hash the identity,
// persist the outcome and emit audit events.
//
// Field values never leave this package except as salted hashes. Logs,
// metrics and audit events carry IDs, failure kinds, counts and scores only.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docverify/internal/document/aamva"
	"docverify/internal/document/crossval"
	"docverify/internal/document/metrics"
	"docverify/internal/document/mrz"
	"docverify/internal/document/store"
	"docverify/pkg/identity"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

// Store persists verification records.
type Store interface {
	Save(ctx context.Context, record *store.VerificationRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*store.VerificationRecord, error)
	ListByIdentityHash(ctx context.Context, hash string) ([]*store.VerificationRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	defaultBatchConcurrency = 4
	defaultMaxBatchSize     = 50
)

// Service orchestrates parsing and verification.
type Service struct {
	store          Store
	validator      *crossval.Validator
	mrzParser      *mrz.Parser
	salt           string
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics

	batchConcurrency int
	maxBatchSize     int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithValidator replaces the default cross validator.
func WithValidator(v *crossval.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithMRZParser replaces the default MRZ parser.
func WithMRZParser(p *mrz.Parser) Option {
	return func(s *Service) {
		if p != nil {
			s.mrzParser = p
		}
	}
}

// WithBatchLimits bounds batch verification: concurrency goroutines at most,
// and at most maxSize documents per batch. Non-positive values keep defaults.
func WithBatchLimits(concurrency, maxSize int) Option {
	return func(s *Service) {
		if concurrency > 0 {
			s.batchConcurrency = concurrency
		}
		if maxSize > 0 {
			s.maxBatchSize = maxSize
		}
	}
}

// New constructs a Service. salt keys every identity hash the service
// produces.
func New(st Store, salt string, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("verification store is required")
	}
	if salt == "" {
		return nil, errors.New("hash salt is required")
	}
	s := &Service{
		store:            st,
		salt:             salt,
		validator:        crossval.MustNew(crossval.DefaultConfig()),
		mrzParser:        mrz.NewParser(),
		batchConcurrency: defaultBatchConcurrency,
		maxBatchSize:     defaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ParseBarcode parses an AAMVA PDF417 payload.
func (s *Service) ParseBarcode(ctx context.Context, payload []byte) (*BarcodeResult, error) {
	rec := aamva.Parse(payload)
	if !rec.Success {
		s.parseFailed(ctx, KindAAMVA, "-", string(rec.Failure))
		return nil, dErrors.Wrap(rec.Err(), dErrors.CodeUnprocessable,
			fmt.Sprintf("barcode payload could not be parsed (%s)", string(rec.Failure)))
	}
	s.parsed(ctx, KindAAMVA, "-", rec.Confidence)
	return &BarcodeResult{
		Record: rec,
		Hashes: identity.Hash(s.salt, rec.IdentityFields()),
	}, nil
}

// ParseMRZ parses machine-readable zone text.
func (s *Service) ParseMRZ(ctx context.Context, text string) (*MRZResult, error) {
	rec := s.mrzParser.Parse(text)
	if !rec.Success {
		s.parseFailed(ctx, KindMRZ, string(rec.Format), string(rec.Failure))
		return nil, dErrors.Wrap(rec.Err(), dErrors.CodeUnprocessable,
			fmt.Sprintf("machine-readable zone could not be parsed (%s)", string(rec.Failure)))
	}
	s.parsed(ctx, KindMRZ, string(rec.Format), rec.Confidence)
	return &MRZResult{
		Record: rec,
		Hashes: identity.Hash(s.salt, rec.IdentityFields()),
	}, nil
}

// Verify parses the request's source document, cross-validates it against
// the OCR fields and persists the outcome.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*Verification, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	src, parse, err := s.source(ctx, req)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(src, req.OCR)
	if !result.Success {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "cross-validation could not run",
				"request_id", requestcontext.RequestID(ctx),
				"document_kind", req.Kind,
				"failure", string(result.Failure),
			)
		}
		return nil, dErrors.Wrap(result.Err(), dErrors.CodeValidation,
			fmt.Sprintf("cross-validation could not run (%s)", string(result.Failure)))
	}

	hashes := identity.Hash(s.salt, src.IdentityFields())
	record := newRecord(ctx, req.Kind, parse, result, hashes)
	if err := s.store.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification")
	}

	s.recordVerification(ctx, record, result)
	s.metrics.ObserveVerifyLatency(time.Since(start))
	return &Verification{Record: record, Result: result}, nil
}

// VerifyBatch verifies each request independently with bounded concurrency.
// Item failures are reported per item; the returned error is non-nil only for
// an invalid batch or a cancelled context.
func (s *Service) VerifyBatch(ctx context.Context, reqs []VerifyRequest) ([]BatchItem, error) {
	switch {
	case len(reqs) == 0:
		return nil, dErrors.New(dErrors.CodeValidation, "batch must contain at least one document")
	case len(reqs) > s.maxBatchSize:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("batch must contain at most %d documents", s.maxBatchSize))
	}
	s.metrics.ObserveBatchSize(len(reqs))

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := s.Verify(gctx, req)
			items[i] = BatchItem{Index: i, Verification: v, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "batch verification aborted")
	}
	return items, nil
}

// GetVerification loads a stored verification.
func (s *Service) GetVerification(ctx context.Context, id uuid.UUID) (*store.VerificationRecord, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	return record, nil
}

// ListVerifications returns every stored verification for an identity hash.
func (s *Service) ListVerifications(ctx context.Context, identityHash string) ([]*store.VerificationRecord, error) {
	if !identity.IsHash(identityHash) {
		return nil, dErrors.New(dErrors.CodeValidation, "identity_hash must be a hex SHA-256 digest")
	}
	records, err := s.store.ListByIdentityHash(ctx, identityHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return records, nil
}

// source builds the cross-validation source for req.
func (s *Service) source(ctx context.Context, req VerifyRequest) (crossval.Source, parseSummary, error) {
	switch req.Kind {
	case KindAAMVA:
		res, err := s.ParseBarcode(ctx, req.Barcode)
		if err != nil {
			return nil, parseSummary{}, err
		}
		// AAMVA carries no check digits, so validity holds vacuously.
		return crossval.FromAAMVA(res.Record), parseSummary{confidence: res.Record.Confidence, checkDigitsValid: true}, nil
	case KindMRZ:
		res, err := s.ParseMRZ(ctx, req.MRZ)
		if err != nil {
			return nil, parseSummary{}, err
		}
		return crossval.FromMRZ(res.Record), parseSummary{
			format:           string(res.Record.Format),
			confidence:       res.Record.Confidence,
			checkDigitsValid: res.Record.AllCheckDigitsValid,
		}, nil
	default:
		return crossval.FromRawMap(req.Fields), parseSummary{confidence: 1, checkDigitsValid: true}, nil
	}
}

func newRecord(ctx context.Context, kind DocumentKind, parse parseSummary, result *crossval.Result, hashes identity.Hashed) *store.VerificationRecord {
	return &store.VerificationRecord{
		ID:                      uuid.New(),
		DocumentKind:            string(kind),
		DocumentFormat:          parse.format,
		ParseConfidence:         parse.confidence,
		CheckDigitsValid:        parse.checkDigitsValid,
		Score:                   result.Score,
		IsValid:                 result.IsValid,
		Confidence:              result.Confidence,
		TrustContribution:       result.TrustContribution,
		RequiredFieldsSatisfied: result.RequiredFieldsSatisfied,
		ExactMatches:            result.ExactMatches,
		FuzzyMatches:            result.FuzzyMatches,
		PartialMatches:          result.PartialMatches,
		Mismatches:              result.Mismatches,
		MissingFields:           result.MissingFields,
		ComparedFields:          result.ComparedFields,
		FieldMatches:            result.FieldMatches,
		IdentityHash:            hashes.Combined,
		FieldHashes:             hashes.Fields,
		RequestID:               requestcontext.RequestID(ctx),
		CreatedAt:               requestcontext.Now(ctx),
	}
}
