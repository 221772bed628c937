// Package auth implements password login and bearer-token verification for
// registry users. Passwords are stored as bcrypt hashes; sessions are signed
// HS256 JWTs carrying the user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials means the username or password did not match.
	// Both cases return the same error so login failures do not reveal
	// which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken means the bearer token is absent, malformed, expired,
	// or signed with the wrong key.
	ErrInvalidToken = errors.New("invalid token")
)

// dummyHash is compared against when the username does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.DefaultCost)

// User is a registry operator account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// UserStore looks up accounts for login.
type UserStore interface {
	// GetByUsername returns the user or ErrInvalidCredentials when absent.
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Service issues and verifies session tokens.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
}

// NewService creates an auth service signing tokens with secret, valid for ttl.
func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

// Session is a successful login result.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticate verifies the password and returns a signed session token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// Burn comparable time so missing users are not distinguishable
			// from wrong passwords.
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password)) //nolint:errcheck
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expires := time.Now().Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(u.ID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{
		Token:     token,
		UserID:    u.ID,
		Username:  u.Username,
		ExpiresAt: expires,
	}, nil
}

// Verify parses and validates a bearer token, returning the user id it carries.
func (s *Service) Verify(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// HashPassword produces a bcrypt hash for storing a new user's password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
