package handlers

import (
	"net/http"

	"github.com/Dosada05/efootball-hub/middleware"
	"github.com/Dosada05/efootball-hub/services"
)

type TeamHandler struct {
	tournamentService services.TournamentService
}

func NewTeamHandler(ts services.TournamentService) *TeamHandler {
	return &TeamHandler{tournamentService: ts}
}

// UpdateOwnTeam обрабатывает PATCH /api/{mode}/my-team
// Владелец меняет профиль своей команды; email берётся из owner-токена.
func (h *TeamHandler) UpdateOwnTeam(w http.ResponseWriter, r *http.Request) {
	ownerEmail, err := middleware.GetOwnerEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "owner token required")
		return
	}
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input services.TeamProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.tournamentService.UpdateOwnTeam(r.Context(), mode, ownerEmail, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
