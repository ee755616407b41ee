package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
)

type gradeService interface {
	RequestGrade(ctx context.Context, principal application.Principal) (application.GradeRequest, error)
	ListGradeRequests(ctx context.Context, principal application.Principal) ([]application.GradeRequest, error)
	ReviewGradeRequest(ctx context.Context, params application.ReviewGradeRequestParams) error
}

type GradeHandler struct {
	service   gradeService
	responder responder
	logger    *slog.Logger
}

func NewGradeHandler(service gradeService, logger *slog.Logger) *GradeHandler {
	base := defaultLogger(logger)
	return &GradeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *GradeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GradeHandler", operation, attrs...)
}

// Create handles POST /grade-requests.
func (h *GradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	request, err := h.service.RequestGrade(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "grade request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "grade requested")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, gradeRequestResponse{GradeRequest: toGradeRequestDTO(request)})
}

// List handles GET /grade-requests.
func (h *GradeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	requests, err := h.service.ListGradeRequests(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "grade request list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(requests)).InfoContext(r.Context(), "grade requests listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listGradeRequestsResponse{GradeRequests: toGradeRequestDTOs(requests)})
}

// Review handles POST /grade-requests/{id}/review.
func (h *GradeHandler) Review(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := GradeRequestIDFromContext(r.Context())
	if !ok || strings.TrimSpace(requestID) == "" {
		h.log(r.Context(), "Review", "error_kind", "bad_request").ErrorContext(r.Context(), "missing grade request id for review")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGradeRequestID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Review", "principal_id", principal.AccountID, "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode review request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Review", "principal_id", principal.AccountID, "request_id", requestID, "approve", req.Approve)

	if err := h.service.ReviewGradeRequest(r.Context(), application.ReviewGradeRequestParams{
		Principal: principal,
		RequestID: requestID,
		Approve:   req.Approve,
	}); err != nil {
		logger.ErrorContext(r.Context(), "grade request review failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "grade request reviewed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

type gradeRequestResponse struct {
	GradeRequest gradeRequestDTO `json:"grade_request"`
}

type listGradeRequestsResponse struct {
	GradeRequests []gradeRequestDTO `json:"grade_requests"`
}

type gradeRequestDTO struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toGradeRequestDTO(request application.GradeRequest) gradeRequestDTO {
	return gradeRequestDTO{
		ID:        request.ID,
		AccountID: request.AccountID,
		Email:     request.Email,
		CreatedAt: request.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toGradeRequestDTOs(requests []application.GradeRequest) []gradeRequestDTO {
	if len(requests) == 0 {
		return nil
	}
	out := make([]gradeRequestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, toGradeRequestDTO(request))
	}
	return out
}
