package service

import (
	"context"

	"docverify/internal/document/crossval"
	"docverify/internal/document/store"
	"docverify/pkg/platform/audit"
	"docverify/pkg/requestcontext"
)

func (s *Service) parsed(ctx context.Context, kind DocumentKind, format string, confidence float64) {
	s.metrics.IncrementParse(string(kind), format, "success")
	s.metrics.ObserveParseConfidence(string(kind), confidence)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "document parsed",
			"request_id", requestcontext.RequestID(ctx),
			"document_kind", kind,
			"format", format,
			"confidence", confidence,
		)
	}
}

func (s *Service) parseFailed(ctx context.Context, kind DocumentKind, format, failure string) {
	s.metrics.IncrementParse(string(kind), format, failure)
	if s.logger != nil {
		s.logger.WarnContext(ctx, "document parse failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_kind", kind,
			"failure", failure,
		)
	}
	s.emitAudit(ctx, audit.Event{
		Subject:      string(kind),
		Action:       string(audit.EventDocumentParseFailed),
		DocumentKind: string(kind),
		Reason:       failure,
	})
}

func (s *Service) recordVerification(ctx context.Context, record *store.VerificationRecord, result *crossval.Result) {
	s.metrics.ObserveScore(record.DocumentKind, result.Score, result.IsValid)
	for _, m := range result.FieldMatches {
		s.metrics.IncrementFieldClassification(m.FieldName, string(m.Classification))
	}

	event, decision := audit.EventDocumentVerified, "valid"
	if !result.IsValid {
		event, decision = audit.EventDocumentRejected, "invalid"
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"request_id", record.RequestID,
			"verification_id", record.ID,
			"document_kind", record.DocumentKind,
			"score", result.Score,
			"confidence", result.Confidence,
			"exact_matches", result.ExactMatches,
			"fuzzy_matches", result.FuzzyMatches,
			"mismatches", result.Mismatches,
			"trust_contribution", result.TrustContribution,
			"log_type", "audit",
		)
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp:     record.CreatedAt,
		Subject:       record.ID.String(),
		Action:        string(event),
		DocumentKind:  record.DocumentKind,
		Decision:      decision,
		SubjectIDHash: record.IdentityHash,
	})
}

// emitAudit publishes best-effort; a failing sink never fails a verification.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
