package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"docverify/internal/document/service"
	"docverify/internal/document/store"
	"docverify/pkg/platform/middleware/requestid"
)

const (
	td3Text = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10"

	barcodePayload = "@\n\x1e\rANSI 636014040002DL00410278ZC03190008DLDAQD1234562\n" +
		"DCSSAMPLE\nDACJOHN\nDBB08311977\nDBA08312022\nDBC1\n" +
		"DAG123 MAIN STREET\nDAIANYTOWN\nDAJCA\nDAK902230000\n"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	logs   *bytes.Buffer
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(s.logs, nil))
	svc, err := service.New(store.NewInMemoryStore(), "handler-salt",
		service.WithLogger(logger),
		service.WithBatchLimits(2, 10),
	)
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	New(svc, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](s *HandlerSuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func mrzVerifyBody() map[string]any {
	return map[string]any{
		"document_kind": "mrz",
		"mrz":           map[string]any{"text": td3Text},
		"ocr_fields": map[string]any{
			"surname":       map[string]any{"value": "ERIKSSON", "confidence": 0.97},
			"given_names":   "ANNA MARIA",
			"date_of_birth": "1974-08-12",
		},
	}
}

func (s *HandlerSuite) TestParseMRZ() {
	s.Run("success exposes no field values", func() {
		rec := s.do(http.MethodPost, "/documents/mrz/parse", map[string]any{"text": td3Text})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.NotContains(rec.Body.String(), "ERIKSSON")
		s.NotContains(rec.Body.String(), "L898902C3")

		resp := decode[ParseMRZResponse](s, rec)
		s.Equal("TD3", string(resp.Format))
		s.True(resp.AllCheckDigitsValid)
		s.Len(resp.IdentityHash, 64)
		s.Len(resp.Lines, 2)
	})

	s.Run("lines form", func() {
		rec := s.do(http.MethodPost, "/documents/mrz/parse", map[string]any{"lines": []string{
			"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
			"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
		}})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unparseable text", func() {
		rec := s.do(http.MethodPost, "/documents/mrz/parse", map[string]any{"text": "hello world"})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		body := decode[map[string]string](s, rec)
		s.Equal("unprocessable_document", body["error"])
	})

	s.Run("missing text", func() {
		rec := s.do(http.MethodPost, "/documents/mrz/parse", map[string]any{})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestParseBarcode() {
	s.Run("base64 payload", func() {
		rec := s.do(http.MethodPost, "/documents/aamva/parse", map[string]any{
			"payload":  base64.StdEncoding.EncodeToString([]byte(barcodePayload)),
			"encoding": "base64",
		})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.NotContains(rec.Body.String(), "SAMPLE")

		resp := decode[ParseBarcodeResponse](s, rec)
		s.Equal("636014", resp.IssuerID)
		s.Contains(resp.FieldCodes, "DAQ")
		s.Contains(resp.FieldHashes, "document_number")
	})

	s.Run("invalid base64", func() {
		rec := s.do(http.MethodPost, "/documents/aamva/parse", map[string]any{"payload": "%%%", "encoding": "base64"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown encoding", func() {
		rec := s.do(http.MethodPost, "/documents/aamva/parse", map[string]any{"payload": "x", "encoding": "hex"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestVerifyAndFetch() {
	rec := s.do(http.MethodPost, "/documents/verify", mrzVerifyBody())
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.NotEmpty(rec.Header().Get(requestid.Header))
	s.NotContains(rec.Body.String(), "ERIKSSON")

	created := decode[VerificationResponse](s, rec)
	s.True(created.IsValid)
	s.Equal("mrz", created.DocumentKind)
	s.NotEqual(uuid.Nil, created.VerificationID)

	s.Run("get by id", func() {
		rec := s.do(http.MethodGet, "/documents/verifications/"+created.VerificationID.String(), nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		fetched := decode[VerificationResponse](s, rec)
		s.Equal(created.VerificationID, fetched.VerificationID)
		s.Equal(created.IdentityHash, fetched.IdentityHash)
	})

	s.Run("list by identity hash", func() {
		rec := s.do(http.MethodGet, "/documents/verifications?identity_hash="+created.IdentityHash, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		list := decode[ListVerificationsResponse](s, rec)
		s.Len(list.Verifications, 1)
	})

	s.Run("invalid id", func() {
		rec := s.do(http.MethodGet, "/documents/verifications/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown id", func() {
		rec := s.do(http.MethodGet, "/documents/verifications/"+uuid.NewString(), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("invalid identity hash", func() {
		rec := s.do(http.MethodGet, "/documents/verifications?identity_hash=abc", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestVerifyValidation() {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "unknown kind", body: map[string]any{"document_kind": "selfie", "ocr_fields": map[string]any{"surname": "X"}}},
		{name: "missing ocr", body: map[string]any{"document_kind": "mrz", "mrz": map[string]any{"text": td3Text}}},
		{name: "missing mrz", body: map[string]any{"document_kind": "mrz", "ocr_fields": map[string]any{"surname": "X"}}},
		{name: "missing barcode", body: map[string]any{"document_kind": "aamva", "ocr_fields": map[string]any{"surname": "X"}}},
		{name: "missing fields", body: map[string]any{"document_kind": "raw_map", "ocr_fields": map[string]any{"surname": "X"}}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, "/documents/verify", tt.body)
			s.Equal(http.StatusBadRequest, rec.Code)
			body := decode[map[string]string](s, rec)
			s.Equal("validation_error", body["error"])
			s.NotEmpty(body["error_description"])
		})
	}
}

func (s *HandlerSuite) TestVerifyRawMapRejected() {
	rec := s.do(http.MethodPost, "/documents/verify", map[string]any{
		"document_kind": "raw_map",
		"fields":        map[string]string{"full_name": "JOHN SMITH"},
		"ocr_fields":    map[string]any{"full_name": "JANE DOE"},
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	resp := decode[VerificationResponse](s, rec)
	s.False(resp.IsValid)
	s.Less(resp.Score, 0.5)
	s.Equal(1, resp.Mismatches)
}

func (s *HandlerSuite) TestVerifyBatch() {
	rec := s.do(http.MethodPost, "/documents/verify/batch", map[string]any{
		"documents": []any{
			mrzVerifyBody(),
			map[string]any{"document_kind": "unknown", "ocr_fields": map[string]any{"surname": "X"}},
			map[string]any{"document_kind": "mrz", "mrz": map[string]any{"text": "garbage"}, "ocr_fields": map[string]any{"surname": "X"}},
		},
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	resp := decode[VerifyBatchResponse](s, rec)
	s.Equal(1, resp.Succeeded)
	s.Equal(2, resp.Failed)
	s.Require().Len(resp.Results, 3)

	s.Equal(0, resp.Results[0].Index)
	s.Require().NotNil(resp.Results[0].Verification)
	s.True(resp.Results[0].Verification.IsValid)

	s.Equal(1, resp.Results[1].Index)
	s.Require().NotNil(resp.Results[1].Error)
	s.Equal("validation_error", resp.Results[1].Error.Error)

	s.Equal(2, resp.Results[2].Index)
	s.Require().NotNil(resp.Results[2].Error)
	s.Equal("unprocessable_document", resp.Results[2].Error.Error)
}

func (s *HandlerSuite) TestVerifyBatchEmpty() {
	rec := s.do(http.MethodPost, "/documents/verify/batch", map[string]any{"documents": []any{}})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestMalformedJSON() {
	req := httptest.NewRequest(http.MethodPost, "/documents/verify", bytes.NewBufferString(`{"document_kind":`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestLogsCarryNoFieldValues() {
	s.do(http.MethodPost, "/documents/verify", mrzVerifyBody())
	s.do(http.MethodPost, "/documents/mrz/parse", map[string]any{"text": "garbage"})
	s.NotContains(s.logs.String(), "ERIKSSON")
	s.NotContains(s.logs.String(), "1974-08-12")
}
