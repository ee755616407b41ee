package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/room-booking/internal/grade"
	"github.com/example/room-booking/internal/persistence"
)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// sessionClaims is the JWT payload of an issued session token. Sessions are
// stateless: a grade change recorded in storage takes effect at the next
// authentication, not on tokens already in flight.
type sessionClaims struct {
	Grade string `json:"grade"`
	jwt.RegisteredClaims
}

// AuthService handles account registration, credential verification, and
// session token issuance.
type AuthService struct {
	accounts       persistence.AccountRepository
	secret         []byte
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(accounts persistence.AccountRepository, secret []byte, idGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(accounts, secret, idGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(accounts persistence.AccountRepository, secret []byte, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:       accounts,
		secret:         secret,
		hashPassword:   func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		verifyPassword: VerifyPassword,
		idGenerator:    idGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates a new account at the visitor grade.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (account Account, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))

	logger := s.loggerWith(ctx, "Register",
		"email", email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", account.ID).InfoContext(ctx, "account registered")
	}()

	vErr := &ValidationError{}
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email is required")
	}
	if len(params.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Password)
	if err != nil {
		return
	}

	account = Account{
		ID:        s.idGenerator(),
		Email:     email,
		Grade:     grade.Visitor,
		CreatedAt: s.now(),
	}
	account.UpdatedAt = account.CreatedAt

	if err = s.accounts.CreateAccount(ctx, persistence.Account{
		ID:           account.ID,
		Email:        account.Email,
		PasswordHash: hash,
		Grade:        string(account.Grade),
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}); err != nil {
		err = mapRepoError(err)
		account = Account{}
		return
	}

	return
}

// Authenticate verifies credentials and issues a signed session token whose
// claims carry the account's grade at the moment of login.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))

	logger := s.loggerWith(ctx, "Authenticate",
		"email", email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("account_id", result.Account.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var stored persistence.Account
	stored, err = s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		return
	}

	if err = s.verifyPassword(stored.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.sessionTTL)

	claims := sessionClaims{
		Grade: stored.Grade,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   stored.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	var token string
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return
	}

	result = AuthenticateResult{
		Account: Account{
			ID:        stored.ID,
			Email:     stored.Email,
			Grade:     grade.Parse(stored.Grade),
			CreatedAt: stored.CreatedAt,
			UpdatedAt: stored.UpdatedAt,
		},
		Token:     token,
		ExpiresAt: expiresAt,
	}

	return
}

// ValidateToken parses and verifies a session token and returns the
// principal it identifies.
func (s *AuthService) ValidateToken(token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	if token == "" {
		return Principal{}, ErrInvalidCredentials
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrSessionExpired
		}
		return Principal{}, ErrInvalidCredentials
	}
	if !parsed.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidCredentials
	}

	return Principal{
		AccountID: claims.Subject,
		Grade:     grade.Parse(claims.Grade),
	}, nil
}
