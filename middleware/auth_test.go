package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	tokens map[string]*services.Claims
	err    error
}

func (v stubValidator) ValidateToken(token string) (*services.Claims, error) {
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	if v.err != nil {
		return nil, v.err
	}
	return nil, services.ErrInvalidToken
}

func okHandler(t *testing.T, seen *services.Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		require.NoError(t, err)
		*seen = *claims
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	admin := &services.Claims{Role: models.RoleAdmin}
	validator := stubValidator{tokens: map[string]*services.Claims{"good": admin}}

	tests := []struct {
		name       string
		header     string
		target     string
		validator  stubValidator
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", header: "Bearer good", target: "/", validator: validator, wantStatus: http.StatusNoContent},
		{name: "lower-case scheme", header: "bearer good", target: "/", validator: validator, wantStatus: http.StatusNoContent},
		{name: "query token", target: "/ws/league?token=good", validator: validator, wantStatus: http.StatusNoContent},
		{name: "missing token", target: "/", validator: validator, wantStatus: http.StatusUnauthorized, wantBody: "authorization token required"},
		{name: "basic scheme", header: "Basic good", target: "/", validator: validator, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", target: "/", validator: validator, wantStatus: http.StatusUnauthorized, wantBody: "invalid token"},
		{
			name:       "expired token",
			header:     "Bearer old",
			target:     "/",
			validator:  stubValidator{err: services.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "token has expired",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen services.Claims
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(tt.validator)(okHandler(t, &seen)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, `{"error":"`+tt.wantBody+`"}`, rec.Body.String())
			}
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, models.RoleAdmin, seen.Role)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	adminOnly := Authorize(models.RoleAdmin)(next)

	serve := func(claims *services.Claims) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if claims != nil {
			req = req.WithContext(WithClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(&services.Claims{Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, serve(&services.Claims{Role: models.RoleOwner, Email: "o@example.com"}))
	assert.Equal(t, http.StatusUnauthorized, serve(&services.Claims{Role: "superuser"}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}

func TestGetOwnerEmailFromContext(t *testing.T) {
	_, err := GetOwnerEmailFromContext(context.Background())
	assert.Error(t, err)

	_, err = GetOwnerEmailFromContext(WithClaims(context.Background(), &services.Claims{Role: models.RoleAdmin}))
	assert.Error(t, err, "admin tokens carry no team")

	email, err := GetOwnerEmailFromContext(WithClaims(context.Background(), &services.Claims{Role: models.RoleOwner, Email: "o@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, "o@example.com", email)
}

func TestAuthenticateWithRealTokens(t *testing.T) {
	auth := services.NewAuthService("middleware-secret", "")
	token, err := auth.IssueOwnerToken(context.Background(), "owner@example.com")
	require.NoError(t, err)

	var seen services.Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(auth)(okHandler(t, &seen)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.RoleOwner, seen.Role)
	assert.Equal(t, "owner@example.com", seen.Email)
	assert.True(t, seen.ExpiresAt.After(time.Now()))
}
