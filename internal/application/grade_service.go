package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/grade"
	"github.com/example/room-booking/internal/persistence"
)

// GradeService manages grade-elevation requests: a visitor files one, an
// administrator approves or denies it. Approval promotes the account to the
// user grade; either decision removes the request from the pending set.
type GradeService struct {
	requests    persistence.GradeRequestRepository
	accounts    persistence.AccountRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewGradeService constructs a grade service with the provided dependencies.
func NewGradeService(requests persistence.GradeRequestRepository, accounts persistence.AccountRepository, idGenerator func() string, now func() time.Time) *GradeService {
	return NewGradeServiceWithLogger(requests, accounts, idGenerator, now, nil)
}

// NewGradeServiceWithLogger constructs a grade service with a specified logger.
func NewGradeServiceWithLogger(requests persistence.GradeRequestRepository, accounts persistence.AccountRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *GradeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &GradeService{
		requests:    requests,
		accounts:    accounts,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *GradeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GradeService", operation, attrs...)
}

// RequestGrade files an elevation request for a visitor principal. At most
// one pending request per account; a second attempt surfaces ErrAlreadyExists.
func (s *GradeService) RequestGrade(ctx context.Context, principal Principal) (request GradeRequest, err error) {
	if s == nil {
		err = fmt.Errorf("GradeService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RequestGrade",
		"principal_id", principal.AccountID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to request grade", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID).InfoContext(ctx, "grade requested")
	}()

	// Only visitors have a grade to gain.
	if principal.Grade != grade.Visitor {
		err = ErrUnauthorized
		return
	}

	var account persistence.Account
	account, err = s.accounts.GetAccount(ctx, principal.AccountID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	request = GradeRequest{
		ID:        s.idGenerator(),
		AccountID: account.ID,
		Email:     account.Email,
		CreatedAt: s.now(),
	}

	if err = s.requests.CreateGradeRequest(ctx, persistence.GradeRequest{
		ID:        request.ID,
		AccountID: request.AccountID,
		Email:     request.Email,
		CreatedAt: request.CreatedAt,
	}); err != nil {
		err = mapRepoError(err)
		request = GradeRequest{}
		return
	}

	return
}

// ListGradeRequests returns the pending set, oldest first, for administrators.
func (s *GradeService) ListGradeRequests(ctx context.Context, principal Principal) (requests []GradeRequest, err error) {
	if s == nil {
		err = fmt.Errorf("GradeService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListGradeRequests",
		"principal_id", principal.AccountID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list grade requests", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(requests)).InfoContext(ctx, "grade requests listed")
	}()

	if !grade.CanManageGradeRequests(principal.Grade) {
		err = ErrUnauthorized
		return
	}

	var raw []persistence.GradeRequest
	raw, err = s.requests.ListGradeRequests(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	requests = make([]GradeRequest, 0, len(raw))
	for _, r := range raw {
		requests = append(requests, GradeRequest{
			ID:        r.ID,
			AccountID: r.AccountID,
			Email:     r.Email,
			CreatedAt: r.CreatedAt,
		})
	}

	return
}

// ReviewGradeRequest resolves a pending request. Approval promotes the
// account to the user grade; both outcomes delete the request.
func (s *GradeService) ReviewGradeRequest(ctx context.Context, params ReviewGradeRequestParams) (err error) {
	if s == nil {
		return fmt.Errorf("GradeService is nil")
	}

	logger := s.loggerWith(ctx, "ReviewGradeRequest",
		"principal_id", params.Principal.AccountID,
		"request_id", params.RequestID,
		"approve", params.Approve,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to review grade request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "grade request reviewed")
	}()

	if !grade.CanManageGradeRequests(params.Principal.Grade) {
		err = ErrUnauthorized
		return
	}

	var request persistence.GradeRequest
	request, err = s.requests.GetGradeRequest(ctx, params.RequestID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if params.Approve {
		if err = s.accounts.UpdateAccountGrade(ctx, request.AccountID, string(grade.User), s.now()); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	if err = s.requests.DeleteGradeRequest(ctx, request.ID); err != nil {
		err = mapRepoError(err)
		return
	}

	return
}
