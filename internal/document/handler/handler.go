package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docverify/internal/document/service"
	"docverify/internal/document/store"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

// Service defines the document operations the handler exposes.
type Service interface {
	ParseBarcode(ctx context.Context, payload []byte) (*service.BarcodeResult, error)
	ParseMRZ(ctx context.Context, text string) (*service.MRZResult, error)
	Verify(ctx context.Context, req service.VerifyRequest) (*service.Verification, error)
	VerifyBatch(ctx context.Context, reqs []service.VerifyRequest) ([]service.BatchItem, error)
	GetVerification(ctx context.Context, id uuid.UUID) (*store.VerificationRecord, error)
	ListVerifications(ctx context.Context, identityHash string) ([]*store.VerificationRecord, error)
}

// Handler wires document endpoints to the document service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a document handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/aamva/parse", h.HandleParseBarcode)
		r.Post("/mrz/parse", h.HandleParseMRZ)
		r.Post("/verify", h.HandleVerify)
		r.Post("/verify/batch", h.HandleVerifyBatch)
		r.Get("/verifications", h.HandleListVerifications)
		r.Get("/verifications/{id}", h.HandleGetVerification)
	})
}

// HandleParseBarcode handles POST /documents/aamva/parse.
func (h *Handler) HandleParseBarcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ParseBarcodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.ParseBarcode(ctx, req.decoded)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toParseBarcodeResponse(res))
}

// HandleParseMRZ handles POST /documents/mrz/parse.
func (h *Handler) HandleParseMRZ(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ParseMRZRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.ParseMRZ(ctx, req.Text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toParseMRZResponse(res))
}

// HandleVerify handles POST /documents/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.Verify(ctx, req.Parsed())
	if err != nil {
		h.logFailure(ctx, "document verification failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document verification completed",
		"request_id", requestID,
		"verification_id", v.Record.ID,
		"is_valid", v.Record.IsValid,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toVerificationResponse(v.Record))
}

// HandleVerifyBatch handles POST /documents/verify/batch. Per-document
// validation failures are reported in the batch body, not as a request error.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reqs := make([]service.VerifyRequest, len(req.Documents))
	invalid := make(map[int]error)
	for i := range req.Documents {
		if err := req.Documents[i].Validate(); err != nil {
			invalid[i] = err
			continue
		}
		reqs[i] = req.Documents[i].Parsed()
	}

	valid := make([]service.VerifyRequest, 0, len(reqs))
	positions := make([]int, 0, len(reqs))
	for i, sr := range reqs {
		if _, bad := invalid[i]; !bad {
			valid = append(valid, sr)
			positions = append(positions, i)
		}
	}

	items := make([]service.BatchItem, len(reqs))
	for i, err := range invalid {
		items[i] = service.BatchItem{Index: i, Err: err}
	}
	if len(valid) > 0 {
		results, err := h.service.VerifyBatch(ctx, valid)
		if err != nil {
			h.logFailure(ctx, "batch verification failed", requestID, err)
			httputil.WriteError(w, err)
			return
		}
		for j, item := range results {
			item.Index = positions[j]
			items[positions[j]] = item
		}
	}

	resp := toVerifyBatchResponse(items)
	h.logger.InfoContext(ctx, "batch verification completed",
		"request_id", requestID,
		"documents", len(items),
		"succeeded", resp.Succeeded,
		"failed", resp.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetVerification handles GET /documents/verifications/{id}.
func (h *Handler) HandleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid verification id"))
		return
	}

	record, err := h.service.GetVerification(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerificationResponse(record))
}

// HandleListVerifications handles GET /documents/verifications?identity_hash=.
func (h *Handler) HandleListVerifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := r.URL.Query().Get("identity_hash")

	records, err := h.service.ListVerifications(ctx, hash)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := ListVerificationsResponse{
		IdentityHash:  hash,
		Verifications: make([]VerificationResponse, 0, len(records)),
	}
	for _, record := range records {
		resp.Verifications = append(resp.Verifications, toVerificationResponse(record))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"error_code", dErrors.CodeOf(err),
		"error", err,
	)
}
