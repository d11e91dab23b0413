package service

import (
	"strings"

	"docverify/internal/document/aamva"
	"docverify/internal/document/crossval"
	"docverify/internal/document/mrz"
	"docverify/internal/document/store"
	"docverify/pkg/identity"
	dErrors "docverify/pkg/domain-errors"
)

// DocumentKind selects the machine-readable source of a verification.
type DocumentKind string

const (
	KindAAMVA  DocumentKind = "aamva"
	KindMRZ    DocumentKind = "mrz"
	KindRawMap DocumentKind = "raw_map"
)

// ParseDocumentKind accepts the kind names case-insensitively.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch kind := DocumentKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case KindAAMVA, KindMRZ, KindRawMap:
		return kind, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "document_kind must be one of aamva, mrz, raw_map")
	}
}

// VerifyRequest is one document to verify. Exactly the input matching Kind
// is used: Barcode for aamva, MRZ for mrz, Fields for raw_map.
type VerifyRequest struct {
	Kind    DocumentKind
	Barcode []byte
	MRZ     string
	Fields  map[string]string
	OCR     map[string]any
}

// Validate checks the request carries the input its kind needs.
func (r VerifyRequest) Validate() error {
	switch r.Kind {
	case KindAAMVA:
		if len(r.Barcode) == 0 {
			return dErrors.New(dErrors.CodeValidation, "barcode payload is required for aamva documents")
		}
	case KindMRZ:
		if strings.TrimSpace(r.MRZ) == "" {
			return dErrors.New(dErrors.CodeValidation, "mrz text is required for mrz documents")
		}
	case KindRawMap:
		if len(r.Fields) == 0 {
			return dErrors.New(dErrors.CodeValidation, "fields are required for raw_map documents")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown document kind")
	}
	if len(r.OCR) == 0 {
		return dErrors.New(dErrors.CodeValidation, "ocr fields are required")
	}
	return nil
}

// BarcodeResult is a successful AAMVA parse with its identity hashes.
type BarcodeResult struct {
	Record *aamva.Record
	Hashes identity.Hashed
}

// MRZResult is a successful MRZ parse with its identity hashes.
type MRZResult struct {
	Record *mrz.Record
	Hashes identity.Hashed
}

// Verification is a persisted verification and the full comparison result.
type Verification struct {
	Record *store.VerificationRecord
	Result *crossval.Result
}

// BatchItem is the outcome of one request in a batch, in request order.
type BatchItem struct {
	Index        int
	Verification *Verification
	Err          error
}

type parseSummary struct {
	format           string
	confidence       float64
	checkDigitsValid bool
}
