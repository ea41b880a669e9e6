package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/efootball-hub/services"
)

type AuthHandler struct {
	authService services.AuthService
	ownerAccess services.OwnerAccessService
}

func NewAuthHandler(authService services.AuthService, ownerAccess services.OwnerAccessService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		ownerAccess: ownerAccess,
	}
}

type adminLoginInput struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminLogin обрабатывает POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var input adminLoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Password == "" {
		unauthorizedResponse(w, r, "password is required")
		return
	}

	token, err := h.authService.AdminLogin(r.Context(), input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resp := tokenResponse{Token: token, ExpiresAt: time.Now().Add(services.AdminTokenTTL)}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type ownerEmailInput struct {
	Email string `json:"email"`
}

// IssueOwnerToken обрабатывает POST /api/auth/owner-tokens (только админ)
func (h *AuthHandler) IssueOwnerToken(w http.ResponseWriter, r *http.Request) {
	var input ownerEmailInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token, err := h.authService.IssueOwnerToken(r.Context(), input.Email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resp := tokenResponse{Token: token, ExpiresAt: time.Now().Add(services.OwnerTokenTTL)}
	if err := writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RequestOwnerLink обрабатывает POST /api/auth/owner-link
// Отвечает 202 независимо от того, владеет ли email командой.
func (h *AuthHandler) RequestOwnerLink(w http.ResponseWriter, r *http.Request) {
	var input ownerEmailInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ownerAccess.RequestLoginLink(r.Context(), input.Email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	msg := "if this email owns a team, a login link has been sent"
	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"message": msg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
