package handler

import (
	"time"

	"github.com/google/uuid"

	"docverify/internal/document/crossval"
	"docverify/internal/document/mrz"
	"docverify/internal/document/service"
	"docverify/internal/document/store"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
)

// ParseBarcodeResponse describes a parsed barcode without its field values.
type ParseBarcodeResponse struct {
	DocumentKind        string            `json:"document_kind"`
	IssuerID            string            `json:"issuer_id"`
	AAMVAVersion        int               `json:"aamva_version"`
	JurisdictionVersion int               `json:"jurisdiction_version"`
	Confidence          float64           `json:"confidence"`
	FieldCount          int               `json:"field_count"`
	FieldCodes          []string          `json:"field_codes"`
	IdentityHash        string            `json:"identity_hash"`
	FieldHashes         map[string]string `json:"field_hashes"`
}

func toParseBarcodeResponse(res *service.BarcodeResult) ParseBarcodeResponse {
	return ParseBarcodeResponse{
		DocumentKind:        string(service.KindAAMVA),
		IssuerID:            res.Record.IssuerID,
		AAMVAVersion:        res.Record.AAMVAVersion,
		JurisdictionVersion: res.Record.JurisdictionVersion,
		Confidence:          res.Record.Confidence,
		FieldCount:          res.Record.FieldCount(),
		FieldCodes:          res.Record.Codes(),
		IdentityHash:        res.Hashes.Combined,
		FieldHashes:         res.Hashes.Fields,
	}
}

// ParseMRZResponse describes a parsed MRZ without its field values.
type ParseMRZResponse struct {
	DocumentKind        string            `json:"document_kind"`
	Format              mrz.Format        `json:"format"`
	DocumentType        string            `json:"document_type"`
	IssuingCountry      string            `json:"issuing_country"`
	Confidence          float64           `json:"confidence"`
	AllCheckDigitsValid bool              `json:"all_check_digits_valid"`
	CheckDigits         []mrz.CheckDigit  `json:"check_digits"`
	Lines               []mrz.Line        `json:"lines"`
	IdentityHash        string            `json:"identity_hash"`
	FieldHashes         map[string]string `json:"field_hashes"`
}

func toParseMRZResponse(res *service.MRZResult) ParseMRZResponse {
	return ParseMRZResponse{
		DocumentKind:        string(service.KindMRZ),
		Format:              res.Record.Format,
		DocumentType:        res.Record.DocumentType,
		IssuingCountry:      res.Record.IssuingCountry,
		Confidence:          res.Record.Confidence,
		AllCheckDigitsValid: res.Record.AllCheckDigitsValid,
		CheckDigits:         res.Record.CheckDigits,
		Lines:               res.Record.Lines,
		IdentityHash:        res.Hashes.Combined,
		FieldHashes:         res.Hashes.Fields,
	}
}

// VerificationResponse is a stored verification outcome.
type VerificationResponse struct {
	VerificationID          uuid.UUID             `json:"verification_id"`
	DocumentKind            string                `json:"document_kind"`
	DocumentFormat          string                `json:"document_format,omitempty"`
	ParseConfidence         float64               `json:"parse_confidence"`
	CheckDigitsValid        bool                  `json:"check_digits_valid"`
	Score                   float64               `json:"score"`
	IsValid                 bool                  `json:"is_valid"`
	Confidence              float64               `json:"confidence"`
	TrustContribution       float64               `json:"trust_contribution"`
	RequiredFieldsSatisfied bool                  `json:"required_fields_satisfied"`
	ExactMatches            int                   `json:"exact_matches"`
	FuzzyMatches            int                   `json:"fuzzy_matches"`
	PartialMatches          int                   `json:"partial_matches"`
	Mismatches              int                   `json:"mismatches"`
	MissingFields           int                   `json:"missing_fields"`
	ComparedFields          int                   `json:"compared_fields"`
	FieldMatches            []crossval.FieldMatch `json:"field_matches"`
	IdentityHash            string                `json:"identity_hash"`
	FieldHashes             map[string]string     `json:"field_hashes"`
	CreatedAt               time.Time             `json:"created_at"`
}

func toVerificationResponse(r *store.VerificationRecord) VerificationResponse {
	return VerificationResponse{
		VerificationID:          r.ID,
		DocumentKind:            r.DocumentKind,
		DocumentFormat:          r.DocumentFormat,
		ParseConfidence:         r.ParseConfidence,
		CheckDigitsValid:        r.CheckDigitsValid,
		Score:                   r.Score,
		IsValid:                 r.IsValid,
		Confidence:              r.Confidence,
		TrustContribution:       r.TrustContribution,
		RequiredFieldsSatisfied: r.RequiredFieldsSatisfied,
		ExactMatches:            r.ExactMatches,
		FuzzyMatches:            r.FuzzyMatches,
		PartialMatches:          r.PartialMatches,
		Mismatches:              r.Mismatches,
		MissingFields:           r.MissingFields,
		ComparedFields:          r.ComparedFields,
		FieldMatches:            r.FieldMatches,
		IdentityHash:            r.IdentityHash,
		FieldHashes:             r.FieldHashes,
		CreatedAt:               r.CreatedAt,
	}
}

// BatchItemResponse is one entry of a batch verification.
type BatchItemResponse struct {
	Index        int                     `json:"index"`
	Verification *VerificationResponse   `json:"verification,omitempty"`
	Error        *httputil.ErrorResponse `json:"error,omitempty"`
}

// VerifyBatchResponse reports every document of a batch in request order.
type VerifyBatchResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

func toVerifyBatchResponse(items []service.BatchItem) VerifyBatchResponse {
	resp := VerifyBatchResponse{Results: make([]BatchItemResponse, 0, len(items))}
	for _, item := range items {
		entry := BatchItemResponse{Index: item.Index}
		if item.Err != nil {
			resp.Failed++
			code := dErrors.CodeOf(item.Err)
			entry.Error = &httputil.ErrorResponse{Error: string(code)}
			if de, ok := dErrors.As(item.Err); ok && code != dErrors.CodeInternal {
				entry.Error.ErrorDescription = de.Message
			}
		} else {
			resp.Succeeded++
			v := toVerificationResponse(item.Verification.Record)
			entry.Verification = &v
		}
		resp.Results = append(resp.Results, entry)
	}
	return resp
}

// ListVerificationsResponse lists stored verifications for one identity.
type ListVerificationsResponse struct {
	IdentityHash  string                 `json:"identity_hash"`
	Verifications []VerificationResponse `json:"verifications"`
}
