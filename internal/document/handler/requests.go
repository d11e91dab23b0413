package handler

import (
	"encoding/base64"
	"strings"

	"docverify/internal/document/service"
	dErrors "docverify/pkg/domain-errors"
)

const (
	maxMRZLength     = 512
	maxFieldCount    = 64
	encodingText     = "text"
	encodingBase64   = "base64"
	maxBarcodeLength = 8 << 10
)

// BarcodeInput carries a decoded PDF417 payload. Binary payloads (with 0x1E
// separators) are sent base64 encoded.
type BarcodeInput struct {
	Payload  string `json:"payload"`
	Encoding string `json:"encoding,omitempty"`

	decoded []byte
}

func (b *BarcodeInput) prepare() error {
	b.Encoding = strings.ToLower(strings.TrimSpace(b.Encoding))
	if b.Payload == "" {
		return dErrors.New(dErrors.CodeValidation, "payload is required")
	}
	if len(b.Payload) > maxBarcodeLength {
		return dErrors.New(dErrors.CodeValidation, "payload is too large")
	}
	switch b.Encoding {
	case "", encodingText:
		b.decoded = []byte(b.Payload)
	case encodingBase64:
		raw, err := base64.StdEncoding.DecodeString(b.Payload)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "payload is not valid base64")
		}
		b.decoded = raw
	default:
		return dErrors.New(dErrors.CodeValidation, "encoding must be text or base64")
	}
	return nil
}

// ParseBarcodeRequest is the body for POST /documents/aamva/parse.
type ParseBarcodeRequest struct {
	BarcodeInput
}

// Validate implements httputil.Validatable.
func (r *ParseBarcodeRequest) Validate() error {
	return r.prepare()
}

// ParseMRZRequest is the body for POST /documents/mrz/parse. Either text or
// lines may be given; lines are joined with newlines.
type ParseMRZRequest struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

// Validate implements httputil.Validatable.
func (r *ParseMRZRequest) Validate() error {
	if r.Text == "" && len(r.Lines) > 0 {
		r.Text = strings.Join(r.Lines, "\n")
	}
	if strings.TrimSpace(r.Text) == "" {
		return dErrors.New(dErrors.CodeValidation, "text or lines is required")
	}
	if len(r.Text) > maxMRZLength {
		return dErrors.New(dErrors.CodeValidation, "mrz text is too large")
	}
	return nil
}

// VerifyRequest is the body for POST /documents/verify.
type VerifyRequest struct {
	DocumentKind string            `json:"document_kind"`
	Barcode      *BarcodeInput     `json:"barcode,omitempty"`
	MRZ          *ParseMRZRequest  `json:"mrz,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	OCRFields    map[string]any    `json:"ocr_fields"`

	parsed service.VerifyRequest
}

// Validate implements httputil.Validatable.
func (r *VerifyRequest) Validate() error {
	kind, err := service.ParseDocumentKind(r.DocumentKind)
	if err != nil {
		return err
	}
	if len(r.OCRFields) == 0 {
		return dErrors.New(dErrors.CodeValidation, "ocr_fields is required")
	}
	if len(r.OCRFields) > maxFieldCount || len(r.Fields) > maxFieldCount {
		return dErrors.New(dErrors.CodeValidation, "too many fields")
	}

	r.parsed = service.VerifyRequest{Kind: kind, OCR: r.OCRFields}
	switch kind {
	case service.KindAAMVA:
		if r.Barcode == nil {
			return dErrors.New(dErrors.CodeValidation, "barcode is required for aamva documents")
		}
		if err := r.Barcode.prepare(); err != nil {
			return err
		}
		r.parsed.Barcode = r.Barcode.decoded
	case service.KindMRZ:
		if r.MRZ == nil {
			return dErrors.New(dErrors.CodeValidation, "mrz is required for mrz documents")
		}
		if err := r.MRZ.Validate(); err != nil {
			return err
		}
		r.parsed.MRZ = r.MRZ.Text
	case service.KindRawMap:
		if len(r.Fields) == 0 {
			return dErrors.New(dErrors.CodeValidation, "fields is required for raw_map documents")
		}
		r.parsed.Fields = r.Fields
	}
	return nil
}

// Parsed returns the validated service request.
func (r *VerifyRequest) Parsed() service.VerifyRequest {
	return r.parsed
}

// VerifyBatchRequest is the body for POST /documents/verify/batch. Documents
// are validated individually when the batch runs.
type VerifyBatchRequest struct {
	Documents []VerifyRequest `json:"documents"`
}

// Validate implements httputil.Validatable.
func (r *VerifyBatchRequest) Validate() error {
	if len(r.Documents) == 0 {
		return dErrors.New(dErrors.CodeValidation, "documents is required")
	}
	return nil
}
