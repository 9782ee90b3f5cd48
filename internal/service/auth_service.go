package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

const tokenIssuer = "run-plan"

// AuthService authenticates the single athlete who owns the plan.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, err error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	email         string
	passwordHash  []byte
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates the athlete authenticator. passwordHash is a bcrypt hash.
func NewAuthService(email, passwordHash, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		email:         strings.ToLower(strings.TrimSpace(email)),
		passwordHash:  []byte(passwordHash),
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Login checks the credentials and issues a signed token.
func (s *authService) Login(_ context.Context, email, password string) (string, time.Time, error) {
	if email == "" || password == "" {
		return "", time.Time{}, ErrAuthenticationFailed
	}
	// An unconfigured account never authenticates.
	if s.email == "" || len(s.passwordHash) == 0 {
		return "", time.Time{}, ErrAuthenticationFailed
	}
	if strings.ToLower(strings.TrimSpace(email)) != s.email {
		return "", time.Time{}, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrAuthenticationFailed
	}

	expiresAt := time.Now().Add(s.jwtExpiration)
	token, err := s.generateJWT(expiresAt)
	if err != nil {
		return "", time.Time{}, ErrTokenGeneration
	}
	return token, expiresAt, nil
}

// generateJWT creates a token for the athlete expiring at expiresAt.
func (s *authService) generateJWT(expiresAt time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   s.email,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    tokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
