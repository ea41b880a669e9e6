package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/services"
	"github.com/go-chi/chi/v5"
)

const maxProofUploadSize = 10 << 20 // 10 MB

type TournamentHandler struct {
	tournamentService services.TournamentService
	ownerAccess       services.OwnerAccessService
	now               func() time.Time
}

func NewTournamentHandler(ts services.TournamentService, ownerAccess services.OwnerAccessService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		ownerAccess:       ownerAccess,
		now:               time.Now,
	}
}

// GetStateHandler обрабатывает GET /api/{mode}/state
func (h *TournamentHandler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	mode, state, ok := h.loadState(w, r)
	if !ok {
		return
	}

	resp := jsonResponse{"state": state}
	if syncErr := h.tournamentService.SyncError(mode); syncErr != "" {
		resp["sync_error"] = syncErr
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type groupStandingsView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Standings []models.Standing `json:"standings"`
}

// GetStandingsHandler обрабатывает GET /api/{mode}/standings
func (h *TournamentHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.loadState(w, r)
	if !ok {
		return
	}

	groups := make([]groupStandingsView, 0, len(state.Groups))
	for _, g := range state.Groups {
		groups = append(groups, groupStandingsView{ID: g.ID, Name: g.Name, Standings: g.Standings})
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type fixtureView struct {
	models.Match
	Overdue bool `json:"overdue"`
}

// GetFixturesHandler обрабатывает GET /api/{mode}/fixtures?group=&matchday=
func (h *TournamentHandler) GetFixturesHandler(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.loadState(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var groupRef *brackets.GroupRef
	if groupID := query.Get("group"); groupID != "" {
		for _, g := range state.Groups {
			if g.ID == groupID {
				ref := brackets.RefOf(g)
				groupRef = &ref
				break
			}
		}
		if groupRef == nil {
			mapServiceErrorToHTTP(w, r, fmt.Errorf("%w: %s", services.ErrGroupNotFound, groupID))
			return
		}
	}
	matchday := 0
	if v := query.Get("matchday"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &matchday); err != nil || matchday < 1 {
			badRequestResponse(w, r, errors.New("invalid matchday query parameter"))
			return
		}
	}

	overdue := make(map[string]bool)
	for _, m := range brackets.OverdueMatches(state.Matches, h.now()) {
		overdue[m.ID] = true
	}

	fixtures := make([]fixtureView, 0, len(state.Matches))
	for _, m := range state.Matches {
		if groupRef != nil && !groupRef.Owns(m.Group) {
			continue
		}
		if matchday > 0 && m.Matchday != matchday {
			continue
		}
		fixtures = append(fixtures, fixtureView{Match: m, Overdue: overdue[m.ID]})
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler обрабатывает GET /api/{mode}/bracket
func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.loadState(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"knockout_stage": state.KnockoutStage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHistoryHandler обрабатывает GET /api/{mode}/history
func (h *TournamentHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.loadState(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": state.History}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportStandingsHandler обрабатывает GET /api/{mode}/standings.xlsx
func (h *TournamentHandler) ExportStandingsHandler(w http.ResponseWriter, r *http.Request) {
	mode, state, ok := h.loadState(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := services.WriteStandingsXLSX(&buf, state); err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(mode)+"-standings.xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.WarnContext(r.Context(), "failed to stream standings export", slog.Any("error", err))
	}
}

// DispatchActionHandler обрабатывает POST /api/{mode}/actions
// Тело: {"type": "...", "payload": {...}}
func (h *TournamentHandler) DispatchActionHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var env services.ActionEnvelope
	if err := readJSON(w, r, &env); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	action, err := services.DecodeAction(env)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	state, res, err := h.tournamentService.Dispatch(r.Context(), mode, action)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = statusForServiceError(res.Err)
		if status == http.StatusInternalServerError {
			status = http.StatusUnprocessableEntity
		}
	} else if approve, ok := action.(services.ApproveOwnership); ok && h.ownerAccess != nil {
		if err := h.ownerAccess.NotifyOwnershipApproved(r.Context(), mode, approve.TeamID); err != nil {
			slog.WarnContext(r.Context(), "failed to notify new team owner",
				slog.String("mode", string(mode)),
				slog.String("team_id", approve.TeamID),
				slog.Any("error", err))
		}
	}

	if err := writeJSON(w, status, jsonResponse{"result": res, "state": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type addCommentInput struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// AddCommentHandler обрабатывает POST /api/{mode}/matches/{matchID}/comments
func (h *TournamentHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input addCommentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comment, err := h.tournamentService.AddComment(r.Context(), mode, models.Comment{
		MatchID: chi.URLParam(r, "matchID"),
		Author:  input.Author,
		Text:    input.Text,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"comment": comment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type ownershipRequestInput struct {
	Email string `json:"email"`
}

// RequestOwnershipHandler обрабатывает POST /api/{mode}/teams/{teamID}/ownership-requests
func (h *TournamentHandler) RequestOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input ownershipRequestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	_, res, err := h.tournamentService.Dispatch(r.Context(), mode, services.RequestTeamOwnership{
		TeamID: chi.URLParam(r, "teamID"),
		Email:  input.Email,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !res.Success {
		mapServiceErrorToHTTP(w, r, res.Err)
		return
	}
	if err := writeJSON(w, http.StatusAccepted, jsonResponse{"message": "ownership request submitted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadProofHandler обрабатывает POST /api/{mode}/matches/{matchID}/proofs
// Ожидает multipart/form-data с полем "file".
func (h *TournamentHandler) UploadProofHandler(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProofUploadSize+1024)
	if err := r.ParseMultipartForm(maxProofUploadSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("file too large or invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("file field is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, 0); err != nil {
			serverErrorResponse(w, r, err)
			return
		}
	}

	url, err := h.tournamentService.UploadProof(r.Context(), mode, chi.URLParam(r, "matchID"), header.Filename, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"url": url}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// loadState serves the public view of the mode. Owner emails stay out of
// every read endpoint.
func (h *TournamentHandler) loadState(w http.ResponseWriter, r *http.Request) (models.Mode, models.TournamentState, bool) {
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return "", models.TournamentState{}, false
	}
	state, err := h.tournamentService.State(mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return "", models.TournamentState{}, false
	}
	return mode, state.Public(), true
}
