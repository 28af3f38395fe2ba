package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaishrk/pcos-care/internal/common"
	"github.com/vaishrk/pcos-care/internal/model"
)

type memStore struct {
	users  map[string]*model.UserAccount
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*model.UserAccount)}
}

func (m *memStore) CreateUser(_ context.Context, user *model.UserAccount) error {
	if _, exists := m.users[user.Email]; exists {
		return fmt.Errorf("%w: email %s", common.ErrDuplicateEntry, user.Email)
	}
	m.nextID++
	user.ID = m.nextID
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.UserAccount, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, email)
	}
	copied := *user
	return &copied, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, "secret", time.Hour)

	user, err := svc.Register(context.Background(), "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc := NewService(newMemStore(), "secret", time.Hour)

	tests := []struct{ name, userName, email, password string }{
		{"missing name", "", "a@b.com", "pw"},
		{"missing email", "A", "", "pw"},
		{"missing password", "A", "a@b.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidInput))
		})
	}
}

func TestRegisterDuplicateLeavesFirstAccountIntact(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, "secret", time.Hour)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Asha", "asha@example.com", "original")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Imposter", "asha@example.com", "stolen")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateEntry))

	stored, err := store.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
	assert.Equal(t, "Asha", stored.Name)
}

func TestLoginSuccess(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, "topsecret", 5*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "asha@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Asha", result.Name)
	assert.Equal(t, "asha@example.com", result.Email)
	assert.NotEmpty(t, result.Token)

	subject, err := svc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", subject)
}

func TestLoginTokenCarriesExpiry(t *testing.T) {
	store := newMemStore()
	ttl := 5 * time.Hour
	svc := NewService(store, "topsecret", ttl)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)
	result, err := svc.Login(ctx, "asha@example.com", "hunter2")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("topsecret"), nil
	})
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, ttl-time.Minute)
	assert.LessOrEqual(t, remaining, ttl)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(newMemStore(), "secret", time.Hour)

	_, err := svc.Login(context.Background(), "ghost@example.com", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestLoginWrongPasswordIssuesNoToken(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, "secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "correct")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "asha@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidCredentials))
	assert.Nil(t, result)
}

func TestLoginFailsClosedWithoutSecret(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "asha@example.com", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMisconfigured))
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, "secret-a", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "pw")
	require.NoError(t, err)
	result, err := svc.Login(ctx, "asha@example.com", "pw")
	require.NoError(t, err)

	other := NewService(store, "secret-b", time.Hour)
	_, err = other.VerifyToken(result.Token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidCredentials))
}
