package service

import (
	"testing"

	"cinematch-go/internal/config"
	"cinematch-go/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) (AuthService, *token.JWTManager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	svc := NewAuthService(config.AdminConfig{
		Username:     "admin",
		PasswordHash: string(hash),
	}, jwtManager)
	return svc, jwtManager
}

func TestLogin_Success(t *testing.T) {
	svc, jwtManager := newTestAuthService(t)

	pair, err := svc.Login("admin", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := jwtManager.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, AdminRole, claims.Role)
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	pair, err := svc.Login("admin", "secret123")
	require.NoError(t, err)

	renewed, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)
	assert.NotEmpty(t, renewed.RefreshToken)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Refresh("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 别的密钥签出来的 token 不被接受
	other := token.NewJWTManager("other-secret", 1, 7)
	forged, err := other.GenerateRefreshToken("admin", AdminRole)
	require.NoError(t, err)
	_, err = svc.Refresh(forged)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
