package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	hash, err := utils.HashPassword("s3cret")
	require.NoError(t, err)
	auth := NewAuthService("jwt-secret", hash)
	ctx := context.Background()

	_, err = auth.AdminLogin(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := auth.AdminLogin(ctx, "s3cret")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Empty(t, claims.Email)
	assert.WithinDuration(t, time.Now().Add(AdminTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	_, err := NewAuthService("jwt-secret", "").AdminLogin(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrAdminLoginDisabled)
}

func TestOwnerToken(t *testing.T) {
	auth := NewAuthService("jwt-secret", "")

	_, err := auth.IssueOwnerToken(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrValidationFailed)

	token, err := auth.IssueOwnerToken(context.Background(), " Owner@Example.COM ")
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, claims.Role)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	auth := NewAuthService("jwt-secret", "")
	other := NewAuthService("another-secret", "")

	foreign, err := other.IssueOwnerToken(context.Background(), "owner@example.com")
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	impl := auth.(*authService)
	impl.now = func() time.Time { return time.Now().Add(-OwnerTokenTTL - time.Hour) }
	expired, err := auth.IssueOwnerToken(context.Background(), "owner@example.com")
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
