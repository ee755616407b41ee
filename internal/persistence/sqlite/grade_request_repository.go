package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// GradeRequestRepository implements persistence.GradeRequestRepository using
// SQLite. The UNIQUE(account_id) index keeps at most one pending request per
// account.
type GradeRequestRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewGradeRequestRepository creates a new SQLite grade request repository.
func NewGradeRequestRepository(pool *ConnectionPool) *GradeRequestRepository {
	return &GradeRequestRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateGradeRequest records a pending elevation request. A second request by
// the same account surfaces ErrDuplicate.
func (r *GradeRequestRepository) CreateGradeRequest(ctx context.Context, request persistence.GradeRequest) error {
	if request.ID == "" || request.AccountID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO grade_requests (id, account_id, email, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		request.ID,
		request.AccountID,
		request.Email,
		request.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetGradeRequest retrieves a pending request by ID.
func (r *GradeRequestRepository) GetGradeRequest(ctx context.Context, id string) (persistence.GradeRequest, error) {
	if id == "" {
		return persistence.GradeRequest{}, persistence.ErrNotFound
	}

	var request persistence.GradeRequest
	var createdAt string

	err := r.helper.QueryRow(ctx,
		"SELECT id, account_id, email, created_at FROM grade_requests WHERE id = ?", id,
	).Scan(&request.ID, &request.AccountID, &request.Email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.GradeRequest{}, persistence.ErrNotFound
		}
		return persistence.GradeRequest{}, r.mapper.MapError(err)
	}

	if request.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.GradeRequest{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return request, nil
}

// ListGradeRequests returns the pending set ordered oldest first.
func (r *GradeRequestRepository) ListGradeRequests(ctx context.Context) ([]persistence.GradeRequest, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, account_id, email, created_at FROM grade_requests ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var requests []persistence.GradeRequest
	for rows.Next() {
		var request persistence.GradeRequest
		var createdAt string

		if err := rows.Scan(&request.ID, &request.AccountID, &request.Email, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if request.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return requests, nil
}

// DeleteGradeRequest removes a resolved request from the pending set.
func (r *GradeRequestRepository) DeleteGradeRequest(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM grade_requests WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}
