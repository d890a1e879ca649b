package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func setupAdmin(t *testing.T, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD_HASH", string(hash))
}

func TestLoginIssuesToken(t *testing.T) {
	setupAdmin(t, "Password@123")
	service := NewService()

	token, err := service.Login("admin@example.com", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	email, role, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email != "admin@example.com" || role != "admin" {
		t.Fatalf("unexpected claims: email=%s role=%s", email, role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	setupAdmin(t, "Password@123")
	service := NewService()

	_, err := service.Login("admin@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	setupAdmin(t, "Password@123")
	service := NewService()

	_, err := service.Login("stranger@example.com", "Password@123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected an error for a malformed token")
	}
}
