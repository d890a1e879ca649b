package auth

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service authenticates the single admin account configured through
// ADMIN_EMAIL and ADMIN_PASSWORD_HASH (a bcrypt hash).
type Service struct {
	adminEmail   string
	passwordHash string
}

func NewService() *Service {
	return &Service{
		adminEmail:   os.Getenv("ADMIN_EMAIL"),
		passwordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
}

func (s *Service) Login(email, password string) (string, error) {
	if s.adminEmail == "" || s.passwordHash == "" {
		return "", errors.New("admin credentials not configured")
	}
	if email != s.adminEmail {
		return "", ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(
		[]byte(s.passwordHash),
		[]byte(password),
	)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	return GenerateToken(email, "admin")
}
