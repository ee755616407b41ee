package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/room-booking/internal/grade"
)

var testSecret = []byte("test-secret")

func newAuthFixture(accounts *stubAccountRepo) *AuthService {
	svc := NewAuthService(accounts, testSecret, sequentialIDs("acct"), fixedNow(testTime), time.Hour)
	// Cheap stand-ins for the argon2id pair; the real pair is covered by the
	// password tests.
	svc.hashPassword = func(password string) (string, error) {
		return "hash:" + password, nil
	}
	svc.verifyPassword = func(hash, password string) error {
		if hash != "hash:"+password {
			return fmt.Errorf("mismatch")
		}
		return nil
	}
	return svc
}

func TestAuthService_Register(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := newAuthFixture(accounts)

	account, err := svc.Register(context.Background(), RegisterParams{
		Email:    "  Claire@Example.com ",
		Password: "mot-de-passe",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Email != "claire@example.com" {
		t.Errorf("Expected normalized email, got '%s'", account.Email)
	}
	if account.Grade != grade.Visitor {
		t.Errorf("Expected new accounts at visitor grade, got '%s'", account.Grade)
	}

	stored, ok := accounts.accounts[account.ID]
	if !ok {
		t.Fatal("Expected account persisted")
	}
	if stored.PasswordHash == "mot-de-passe" {
		t.Error("Expected password stored hashed")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthFixture(newStubAccountRepo())

	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{name: "empty email", email: "", password: "mot-de-passe", field: "email"},
		{name: "malformed email", email: "claire", password: "mot-de-passe", field: "email"},
		{name: "short password", email: "claire@example.com", password: "court", field: "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), RegisterParams{Email: tc.email, Password: tc.password})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Errorf("Expected field error for %s, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newAuthFixture(newStubAccountRepo())

	if _, err := svc.Register(context.Background(), RegisterParams{Email: "claire@example.com", Password: "mot-de-passe"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterParams{Email: "claire@example.com", Password: "autre-mot-de-passe"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := newAuthFixture(accounts)

	registered, err := svc.Register(context.Background(), RegisterParams{Email: "claire@example.com", Password: "mot-de-passe"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "claire@example.com", Password: "mot-de-passe"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("Expected a session token")
	}
	if !result.ExpiresAt.Equal(testTime.Add(time.Hour)) {
		t.Errorf("Expected expiry %v, got %v", testTime.Add(time.Hour), result.ExpiresAt)
	}

	principal, err := svc.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if principal.AccountID != registered.ID {
		t.Errorf("Expected principal %s, got %s", registered.ID, principal.AccountID)
	}
	if principal.Grade != grade.Visitor {
		t.Errorf("Expected visitor grade in claims, got %s", principal.Grade)
	}
}

func TestAuthService_Authenticate_InvalidCredentials(t *testing.T) {
	svc := newAuthFixture(newStubAccountRepo())

	if _, err := svc.Register(context.Background(), RegisterParams{Email: "claire@example.com", Password: "mot-de-passe"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "claire@example.com", password: "faux"},
		{name: "unknown email", email: "inconnu@example.com", password: "mot-de-passe"},
		{name: "empty password", email: "claire@example.com", password: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: tc.email, Password: tc.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_TokenCarriesGradeAtLogin(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := newAuthFixture(accounts)

	registered, err := svc.Register(context.Background(), RegisterParams{Email: "claire@example.com", Password: "mot-de-passe"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "claire@example.com", Password: "mot-de-passe"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	// Promote the account after the first login. The issued token keeps the
	// old grade; a fresh login picks up the new one.
	if err := accounts.UpdateAccountGrade(context.Background(), registered.ID, string(grade.User), testTime); err != nil {
		t.Fatalf("UpdateAccountGrade failed: %v", err)
	}

	principal, err := svc.ValidateToken(first.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if principal.Grade != grade.Visitor {
		t.Errorf("Expected stale token to keep visitor grade, got %s", principal.Grade)
	}

	second, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "claire@example.com", Password: "mot-de-passe"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	principal, err = svc.ValidateToken(second.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if principal.Grade != grade.User {
		t.Errorf("Expected fresh token to carry user grade, got %s", principal.Grade)
	}
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	accounts := newStubAccountRepo()
	svc := newAuthFixture(accounts)

	if _, err := svc.Register(context.Background(), RegisterParams{Email: "claire@example.com", Password: "mot-de-passe"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "claire@example.com", Password: "mot-de-passe"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	// Move the clock past the TTL.
	svc.now = fixedNow(testTime.Add(2 * time.Hour))

	_, err = svc.ValidateToken(result.Token)
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	svc := newAuthFixture(newStubAccountRepo())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("token %q: expected ErrInvalidCredentials, got %v", token, err)
		}
	}
}
