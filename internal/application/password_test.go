package application

import (
	"errors"
	"strings"
	"testing"
)

// Small parameters keep the test fast; production uses DefaultArgon2idParams.
var testArgon2idParams = Argon2idParams{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := CreatePasswordHash("mot-de-passe", testArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("Expected argon2id format, got '%s'", hash)
	}

	if err := VerifyPassword(hash, "mot-de-passe"); err != nil {
		t.Errorf("Expected correct password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "faux"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "plain", "$bcrypt$x$y$z$w$v"} {
		if err := VerifyPassword(hash, "mot-de-passe"); !errors.Is(err, ErrInvalidPasswordHash) {
			t.Errorf("hash %q: expected ErrInvalidPasswordHash, got %v", hash, err)
		}
	}
}
