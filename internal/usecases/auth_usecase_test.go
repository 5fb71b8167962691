package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_healthbot/internal/entities"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
	err   error
}

func (m *memUsers) CreateUser(_ context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]*entities.User)
	}
	user.ID = len(m.users) + 1
	m.users[user.Username] = user
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.users[username], nil
}

func TestEnsureAdminAndLogin(t *testing.T) {
	users := &memUsers{}
	auth := NewAuthUsecase(users, "secret")
	ctx := context.Background()

	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "hunter2"))
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "other"))
	assert.Len(t, users.users, 1)

	signed, err := auth.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := &memUsers{}
	auth := NewAuthUsecase(users, "secret")
	ctx := context.Background()
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "hunter2"))

	_, err := auth.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.err = errBoom
	_, err = auth.Login(ctx, "admin", "hunter2")
	assert.ErrorIs(t, err, errBoom)
}

func TestLoginTokenExpires(t *testing.T) {
	users := &memUsers{}
	auth := NewAuthUsecase(users, "secret")
	auth.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	ctx := context.Background()
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "hunter2"))

	signed, err := auth.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestEnsureAdminRequiresPassword(t *testing.T) {
	auth := NewAuthUsecase(&memUsers{}, "secret")
	assert.Error(t, auth.EnsureAdmin(context.Background(), "admin", ""))
}
