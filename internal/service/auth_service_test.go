package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/konekt/internal/domain"
	"github.com/vedran77/konekt/internal/repository/memory"
)

const testSecret = "test-secret"

func newAuthService() (*AuthService, *memory.UserRepo) {
	users := memory.NewUserRepo()
	return NewAuthService(users, testSecret, "admin", "hunter22"), users
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return parsed.Claims.(jwt.MapClaims)
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthService()

	resp, err := svc.Register(context.Background(), RegisterInput{Username: "  Alice ", Password: "secret123"})
	require.NoError(t, err)

	// Handles are trimmed and lowercased before storage.
	assert.Equal(t, "alice", resp.User.Username)
	assert.False(t, resp.User.IsAdmin)
	assert.NotEmpty(t, resp.Token)

	claims := parseClaims(t, resp.Token)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, false, claims["adm"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	// Same handle with different casing still collides.
	_, err = svc.Register(context.Background(), RegisterInput{Username: "ALICE", Password: "other456"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService()

	reg, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginInput{Username: "Alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.LastLogin)
}

func TestLoginFailures(t *testing.T) {
	svc, users := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	// Accounts imported without a password hash cannot log in.
	require.NoError(t, users.Create(context.Background(), &domain.User{
		ID:       uuid.New(),
		Username: "oldtimer",
	}))
	_, err = svc.Login(context.Background(), LoginInput{Username: "oldtimer", Password: "whatever"})
	assert.ErrorIs(t, err, ErrLegacyAccount)
}

func TestAdminLogin(t *testing.T) {
	svc, _ := newAuthService()

	resp, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "hunter22", IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)
	assert.Equal(t, AdminPrincipal("admin"), resp.User.ID)

	claims := parseClaims(t, resp.Token)
	assert.Equal(t, true, claims["adm"])

	_, err = svc.Login(context.Background(), LoginInput{Username: "admin", Password: "nope", IsAdmin: true})
	assert.ErrorIs(t, err, ErrInvalidAdminCreds)

	_, err = svc.Login(context.Background(), LoginInput{Username: "other", Password: "hunter22", IsAdmin: true})
	assert.ErrorIs(t, err, ErrInvalidAdminCreds)
}

func TestAdminLoginDisabledWithoutPassword(t *testing.T) {
	users := memory.NewUserRepo()
	svc := NewAuthService(users, testSecret, "admin", "")

	_, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "", IsAdmin: true})
	assert.ErrorIs(t, err, ErrInvalidAdminCreds)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, verifyPassword("secret123", hash))
	assert.False(t, verifyPassword("secret124", hash))
	assert.False(t, verifyPassword("secret123", "not-a-hash"))

	// Same password hashes to different strings thanks to the random salt.
	other, err := hashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
