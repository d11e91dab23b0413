package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"docverify/internal/document/service/mocks"
	"docverify/internal/document/store"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/audit"
	"docverify/pkg/platform/audit/publisher"
	auditmemory "docverify/pkg/platform/audit/store/memory"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/service-mocks.go -package=mocks Store,AuditPublisher

const (
	td3Line1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	td3Line2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"

	barcodePayload = "@\n\x1e\rANSI 636014040002DL00410278ZC03190008DLDAQD1234562\n" +
		"DCSSAMPLE\nDACJOHN\nDADQUINCY\nDBB08311977\nDBA08312022\nDBC1\n" +
		"DAG123 MAIN STREET\nDAIANYTOWN\nDAJCA\nDAK902230000\n"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	auditLog  *auditmemory.InMemoryStore
	logBuffer *bytes.Buffer
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.logBuffer = &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(s.logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))

	svc, err := New(s.store, "test-salt",
		WithLogger(logger),
		WithAuditPublisher(publisher.NewPublisher(s.auditLog)),
		WithBatchLimits(2, 5),
	)
	s.Require().NoError(err)
	s.service = svc

	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
	s.ctx = requestcontext.WithRequestID(s.ctx, "req-123")
}

func mrzRequest(ocr map[string]any) VerifyRequest {
	return VerifyRequest{Kind: KindMRZ, MRZ: td3Line1 + "\n" + td3Line2, OCR: ocr}
}

func matchingOCR() map[string]any {
	return map[string]any{
		"surname":         "Eriksson",
		"given_names":     "Anna Maria",
		"date_of_birth":   "1974-08-12",
		"document_number": "L898902C3",
	}
}

func (s *ServiceSuite) TestNew() {
	_, err := New(nil, "salt")
	s.Error(err)
	_, err = New(store.NewInMemoryStore(), "")
	s.Error(err)
}

func (s *ServiceSuite) TestParseBarcode() {
	s.Run("success", func() {
		res, err := s.service.ParseBarcode(s.ctx, []byte(barcodePayload))
		s.Require().NoError(err)
		s.Equal("D1234562", res.Record.DocumentNumber)
		s.Len(res.Hashes.Combined, 64)
		s.Contains(res.Hashes.Fields, "surname")
	})

	s.Run("empty payload", func() {
		_, err := s.service.ParseBarcode(s.ctx, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
		s.Contains(err.Error(), "empty_payload")

		events, _ := s.auditLog.ListBySubject(s.ctx, string(KindAAMVA))
		s.Require().NotEmpty(events)
		s.Equal(string(audit.EventDocumentParseFailed), events[len(events)-1].Action)
		s.Equal("empty_payload", events[len(events)-1].Reason)
		s.Equal("req-123", events[len(events)-1].RequestID)
	})
}

func (s *ServiceSuite) TestParseMRZ() {
	s.Run("success", func() {
		res, err := s.service.ParseMRZ(s.ctx, td3Line1+"\n"+td3Line2)
		s.Require().NoError(err)
		s.Equal("TD3", string(res.Record.Format))
		s.True(res.Record.AllCheckDigitsValid)
	})

	s.Run("no lines", func() {
		_, err := s.service.ParseMRZ(s.ctx, "hello")
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
	})
}

func (s *ServiceSuite) TestVerifyValidDocument() {
	v, err := s.service.Verify(s.ctx, mrzRequest(matchingOCR()))
	s.Require().NoError(err)

	s.True(v.Result.IsValid)
	s.Equal("mrz", v.Record.DocumentKind)
	s.Equal("TD3", v.Record.DocumentFormat)
	s.True(v.Record.CheckDigitsValid)
	s.Equal(fixedNow, v.Record.CreatedAt)
	s.Equal("req-123", v.Record.RequestID)
	s.InDelta(0.15, v.Record.TrustContribution, 1e-9)

	stored, err := s.service.GetVerification(s.ctx, v.Record.ID)
	s.Require().NoError(err)
	s.Equal(v.Record.IdentityHash, stored.IdentityHash)

	events, err := s.auditLog.ListBySubject(s.ctx, v.Record.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventDocumentVerified), events[0].Action)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal(v.Record.IdentityHash, events[0].SubjectIDHash)
	s.Equal(fixedNow, events[0].Timestamp)
}

func (s *ServiceSuite) TestVerifyRejectedDocument() {
	v, err := s.service.Verify(s.ctx, VerifyRequest{
		Kind:   KindRawMap,
		Fields: map[string]string{"full_name": "JOHN SMITH", "date_of_birth": "1980-01-01"},
		OCR:    map[string]any{"full_name": "JANE DOE", "date_of_birth": "1990-05-05"},
	})
	s.Require().NoError(err)
	s.False(v.Result.IsValid)
	s.InDelta(-0.1, v.Record.TrustContribution, 1e-9)
	s.True(v.Record.CheckDigitsValid, "raw maps have no check digits to fail")

	events, _ := s.auditLog.ListBySubject(s.ctx, v.Record.ID.String())
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventDocumentRejected), events[0].Action)
	s.Equal("invalid", events[0].Decision)
}

func (s *ServiceSuite) TestVerifyBarcode() {
	v, err := s.service.Verify(s.ctx, VerifyRequest{
		Kind:    KindAAMVA,
		Barcode: []byte(barcodePayload),
		OCR: map[string]any{
			"last_name":      "Sample",
			"dob":            "08/31/1977",
			"license_number": "D1234562",
		},
	})
	s.Require().NoError(err)
	s.True(v.Result.IsValid)
	s.Equal("aamva", v.Record.DocumentKind)
	s.Empty(v.Record.DocumentFormat)
	s.True(v.Record.CheckDigitsValid, "barcodes have no check digits to fail")
}

func (s *ServiceSuite) TestVerifyRequestValidation() {
	tests := []struct {
		name string
		req  VerifyRequest
	}{
		{name: "unknown kind", req: VerifyRequest{Kind: "passport", OCR: matchingOCR()}},
		{name: "missing barcode", req: VerifyRequest{Kind: KindAAMVA, OCR: matchingOCR()}},
		{name: "missing mrz", req: VerifyRequest{Kind: KindMRZ, MRZ: "  ", OCR: matchingOCR()}},
		{name: "missing fields", req: VerifyRequest{Kind: KindRawMap, OCR: matchingOCR()}},
		{name: "missing ocr", req: mrzRequest(nil)},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Verify(s.ctx, tt.req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestVerifyBlankOCRValues() {
	_, err := s.service.Verify(s.ctx, mrzRequest(map[string]any{"surname": "   "}))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "empty_ocr_fields")
}

func (s *ServiceSuite) TestVerifyUnparseableDocument() {
	_, err := s.service.Verify(s.ctx, VerifyRequest{Kind: KindMRZ, MRZ: "not an mrz", OCR: matchingOCR()})
	s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
}

// newMockedService builds a Service over generated store and audit mocks.
// Call it inside the subtest that sets expectations.
func (s *ServiceSuite) newMockedService() (*Service, *mocks.MockStore, *mocks.MockAuditPublisher) {
	ctrl := gomock.NewController(s.T())
	st := mocks.NewMockStore(ctrl)
	pub := mocks.NewMockAuditPublisher(ctrl)
	logger := slog.New(slog.NewJSONHandler(s.logBuffer, nil))
	svc, err := New(st, "salt", WithLogger(logger), WithAuditPublisher(pub))
	s.Require().NoError(err)
	return svc, st, pub
}

func (s *ServiceSuite) TestStoreSaveFailure() {
	svc, st, _ := s.newMockedService()
	st.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := svc.Verify(s.ctx, mrzRequest(matchingOCR()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailVerify() {
	svc, st, pub := s.newMockedService()
	st.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	pub.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event audit.Event) error {
		s.Equal(string(audit.EventDocumentVerified), event.Action)
		s.Equal("req-123", event.RequestID)
		return publisher.ErrBufferFull
	})

	v, err := svc.Verify(s.ctx, mrzRequest(matchingOCR()))
	s.Require().NoError(err)
	s.True(v.Result.IsValid)
	s.Contains(s.logBuffer.String(), "failed to emit audit event")
}

func (s *ServiceSuite) TestParseFailureEmitsAuditOnce() {
	svc, _, pub := s.newMockedService()
	pub.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event audit.Event) error {
		s.Equal(string(audit.EventDocumentParseFailed), event.Action)
		s.Equal("no_lines", event.Reason)
		return nil
	}).Times(1)

	_, err := svc.ParseMRZ(s.ctx, "garbage")
	s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
	s.Contains(err.Error(), "no_lines")
}

func (s *ServiceSuite) TestGetVerificationStoreErrors() {
	s.Run("wrapped not found", func() {
		svc, st, _ := s.newMockedService()
		id := uuid.New()
		st.EXPECT().FindByID(gomock.Any(), id).Return(nil, fmt.Errorf("find %s: %w", id, sentinel.ErrNotFound))

		_, err := svc.GetVerification(s.ctx, id)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("backend failure is internal", func() {
		svc, st, _ := s.newMockedService()
		cause := errors.New("connection reset")
		st.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, cause)

		_, err := svc.GetVerification(s.ctx, uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorIs(err, cause)
	})
}

func (s *ServiceSuite) TestListVerificationsStoreError() {
	svc, st, _ := s.newMockedService()
	hash := strings.Repeat("a", 64)
	st.EXPECT().ListByIdentityHash(gomock.Any(), hash).Return(nil, errors.New("timeout"))

	_, err := svc.ListVerifications(s.ctx, hash)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestLogsCarryNoFieldValues() {
	_, err := s.service.Verify(s.ctx, mrzRequest(matchingOCR()))
	s.Require().NoError(err)
	_, _ = s.service.ParseMRZ(s.ctx, "garbage")

	logs := s.logBuffer.String()
	s.NotEmpty(logs)
	for _, value := range []string{"ERIKSSON", "Eriksson", "ANNA", "L898902C3", "1974-08-12"} {
		s.NotContains(logs, value)
	}
}

func (s *ServiceSuite) TestVerifyBatch() {
	s.Run("reports items in order", func() {
		items, err := s.service.VerifyBatch(s.ctx, []VerifyRequest{
			mrzRequest(matchingOCR()),
			{Kind: KindMRZ, MRZ: "bad", OCR: matchingOCR()},
			{Kind: KindRawMap, Fields: map[string]string{"surname": "DOE", "date_of_birth": "1990-01-01"}, OCR: map[string]any{"surname": "DOE", "dob": "1990-01-01"}},
		})
		s.Require().NoError(err)
		s.Require().Len(items, 3)

		s.Equal(0, items[0].Index)
		s.NoError(items[0].Err)
		s.True(items[0].Verification.Result.IsValid)

		s.Equal(1, items[1].Index)
		s.True(dErrors.HasCode(items[1].Err, dErrors.CodeUnprocessable))
		s.Nil(items[1].Verification)

		s.Equal(2, items[2].Index)
		s.NoError(items[2].Err)
	})

	s.Run("empty batch", func() {
		_, err := s.service.VerifyBatch(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("oversized batch", func() {
		reqs := make([]VerifyRequest, 6)
		_, err := s.service.VerifyBatch(s.ctx, reqs)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		_, err := s.service.VerifyBatch(ctx, []VerifyRequest{mrzRequest(matchingOCR())})
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *ServiceSuite) TestGetVerificationNotFound() {
	_, err := s.service.GetVerification(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListVerifications() {
	first, err := s.service.Verify(s.ctx, mrzRequest(matchingOCR()))
	s.Require().NoError(err)
	second, err := s.service.Verify(requestcontext.WithTime(s.ctx, fixedNow.Add(time.Minute)), mrzRequest(matchingOCR()))
	s.Require().NoError(err)
	s.Equal(first.Record.IdentityHash, second.Record.IdentityHash)

	records, err := s.service.ListVerifications(s.ctx, first.Record.IdentityHash)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.Record.ID, records[0].ID)

	_, err = s.service.ListVerifications(s.ctx, strings.Repeat("z", 64))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
