package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// AccountRepository implements persistence.AccountRepository using SQLite.
type AccountRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(pool *ConnectionPool) *AccountRepository {
	return &AccountRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAccount inserts a new account. An email collision surfaces
// ErrDuplicate.
func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.Account) error {
	if account.ID == "" || account.Email == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO accounts (id, email, password_hash, grade, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Grade,
		account.CreatedAt.UTC().Format(time.RFC3339),
		account.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetAccount retrieves an account by ID.
func (r *AccountRepository) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	if id == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return r.getAccount(ctx, "SELECT id, email, password_hash, grade, created_at, updated_at FROM accounts WHERE id = ?", id)
}

// GetAccountByEmail retrieves an account by email, case-insensitively.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (persistence.Account, error) {
	if email == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return r.getAccount(ctx, "SELECT id, email, password_hash, grade, created_at, updated_at FROM accounts WHERE email = ? COLLATE NOCASE", email)
}

// UpdateAccountGrade reflects a server-approved grade change.
func (r *AccountRepository) UpdateAccountGrade(ctx context.Context, id, grade string, updatedAt time.Time) error {
	result, err := r.helper.Exec(ctx,
		"UPDATE accounts SET grade = ?, updated_at = ? WHERE id = ?",
		grade, updatedAt.UTC().Format(time.RFC3339), id,
	)
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

func (r *AccountRepository) getAccount(ctx context.Context, query string, arg any) (persistence.Account, error) {
	var account persistence.Account
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Grade,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Account{}, persistence.ErrNotFound
		}
		return persistence.Account{}, r.mapper.MapError(err)
	}

	if account.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if account.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Account{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return account, nil
}
