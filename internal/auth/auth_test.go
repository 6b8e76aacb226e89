package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamau/fleet-ledger/internal/auth"
	"github.com/mkamau/fleet-ledger/internal/domain"
)

func TestService_PasswordHashing(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	hash, err := svc.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, svc.CheckPassword("hunter2", hash))
	assert.False(t, svc.CheckPassword("wrong", hash))
	assert.False(t, svc.CheckPassword("hunter2", "not-a-hash"))
}

func TestService_TokenRoundtrip(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)
	user := domain.User{Username: "alice", Role: domain.RoleDriver, VehicleReg: "KAA 123A"}

	token, err := svc.GenerateToken(user, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleDriver, claims.Role)
	assert.Equal(t, "KAA 123A", claims.VehicleReg)
	assert.Equal(t, user, claims.User())
}

func TestService_ValidateToken_AcceptsBearerPrefix(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)
	token, err := svc.GenerateToken(domain.User{Username: "admin", Role: domain.RoleAdmin}, time.Now())
	require.NoError(t, err)

	claims, err := svc.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	svc := auth.NewService("test-secret", time.Minute)
	token, err := svc.GenerateToken(domain.User{Username: "alice", Role: domain.RoleAdmin}, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := auth.NewService("secret-a", time.Hour).
		GenerateToken(domain.User{Username: "alice", Role: domain.RoleAdmin}, time.Now())
	require.NoError(t, err)

	_, err = auth.NewService("secret-b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_ValidateToken_Garbage(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	_, err := svc.ValidateToken("definitely.not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
