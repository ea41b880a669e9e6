package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/handlers"
	"github.com/Dosada05/efootball-hub/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, services.AuthService) {
	t.Helper()
	auth := services.NewAuthService("routes-secret", "")
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "routes_test_total", Help: "test"}))

	router := chi.NewRouter()
	SetupRoutes(router, Options{
		AllowedOrigins: []string{"https://hub.example"},
		Validator:      auth,
		Gatherer:       registry,
	},
		handlers.NewAuthHandler(auth, nil),
		handlers.NewTournamentHandler(nil, nil),
		handlers.NewTeamHandler(nil),
		handlers.NewDashboardHandler(nil),
		handlers.NewWebSocketHandler(brackets.NewHub(nil), nil, nil, nil),
	)
	return router, auth
}

func serve(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "routes_test_total")
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	router, auth := newTestRouter(t)
	ownerToken, err := auth.IssueOwnerToken(context.Background(), "owner@example.com")
	require.NoError(t, err)

	adminOnly := []struct{ method, target string }{
		{http.MethodGet, "/api/admin/dashboard"},
		{http.MethodPost, "/api/auth/owner-tokens"},
		{http.MethodPost, "/api/league/actions"},
	}
	for _, route := range adminOnly {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, serve(router, route.method, route.target, "").Code)
			assert.Equal(t, http.StatusUnauthorized, serve(router, route.method, route.target, "garbage").Code)
			assert.Equal(t, http.StatusForbidden, serve(router, route.method, route.target, ownerToken).Code)
		})
	}
}

func TestOwnerRouteRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := serve(router, http.MethodPatch, "/api/league/my-team", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/league/state", nil)
	req.Header.Set("Origin", "https://hub.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://hub.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
