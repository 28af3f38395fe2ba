// Package auth implements user registration, login, and signed token
// issuance.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/model"
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.UserAccount) error
	GetUserByEmail(ctx context.Context, email string) (*model.UserAccount, error)
}

// Service validates credentials and issues time-bounded signed tokens.
type Service struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service. The signing secret is process-wide
// configuration; an empty secret makes Login fail closed.
func NewService(store UserStore, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 5 * time.Hour
	}
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register creates a new account with a bcrypt password hash. The
// plaintext password is never persisted or logged.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.UserAccount, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.UserAccount{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginResult is a successful login: a signed token plus the account's
// public fields.
type LoginResult struct {
	Token string
	Name  string
	Email string
}

// Login checks credentials and issues an HS256 token carrying the
// subject email and an absolute expiry.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrInvalidInput)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: wrong password for %s", common.ErrInvalidCredentials, email)
	}

	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: missing signing secret", common.ErrMisconfigured)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.Email,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{Token: token, Name: user.Name, Email: user.Email}, nil
}

// VerifyToken parses and validates a token, returning the subject email.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: missing signing secret", common.ErrMisconfigured)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidCredentials, err)
	}
	return claims.Subject, nil
}
