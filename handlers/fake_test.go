package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/efootball-hub/middleware"
	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// stubTournamentService runs the real reducer over in-memory states.
type stubTournamentService struct {
	mu       sync.Mutex
	states   map[models.Mode]models.TournamentState
	syncErr  string
	comments []models.Comment
	uploads  []string
	closed   bool
}

func newStubTournamentService() *stubTournamentService {
	states := make(map[models.Mode]models.TournamentState, len(models.Modes))
	for _, mode := range models.Modes {
		states[mode] = models.NewTournamentState(mode)
	}
	return &stubTournamentService{states: states}
}

func (s *stubTournamentService) Start(ctx context.Context) error { return nil }

func (s *stubTournamentService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubTournamentService) State(mode models.Mode) (models.TournamentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[mode]
	if !ok {
		return models.TournamentState{}, services.ErrInvalidMode
	}
	return state, nil
}

func (s *stubTournamentService) SyncError(mode models.Mode) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncErr
}

func (s *stubTournamentService) Dispatch(ctx context.Context, mode models.Mode, action services.Action) (models.TournamentState, services.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.TournamentState{}, services.Result{}, services.ErrServiceClosed
	}
	state, ok := s.states[mode]
	if !ok {
		return models.TournamentState{}, services.Result{}, services.ErrInvalidMode
	}
	next, res := services.ReduceWithResult(state, action)
	s.states[mode] = next
	return next, res, nil
}

func (s *stubTournamentService) AddComment(ctx context.Context, mode models.Mode, comment models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(comment.Text) == "" {
		return models.Comment{}, services.ErrCommentRequired
	}
	if !hasMatch(s.states[mode], comment.MatchID) {
		return models.Comment{}, services.ErrMatchNotFound
	}
	comment.ID = "c-1"
	s.comments = append(s.comments, comment)
	return comment, nil
}

func (s *stubTournamentService) UpdateOwnTeam(ctx context.Context, mode models.Mode, ownerEmail string, input services.TeamProfileInput) (models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[mode]
	for i, t := range state.Teams {
		if t.OwnerEmail != ownerEmail {
			continue
		}
		if input.Name != nil {
			t.Name = *input.Name
		}
		if input.ManagerName != nil {
			t.ManagerName = *input.ManagerName
		}
		state.Teams[i] = t
		s.states[mode] = state
		return t, nil
	}
	return models.Team{}, services.ErrOwnerActionRequired
}

func (s *stubTournamentService) UploadProof(ctx context.Context, mode models.Mode, matchID, fileName, contentType string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !hasMatch(s.states[mode], matchID) {
		return "", services.ErrMatchNotFound
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", services.ErrValidationFailed
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, fileName)
	return "https://cdn.example/proofs/" + matchID + "/" + fileName, nil
}

// seed replaces the mode state; Hydrate keeps it in the shape the reducer produces.
func (s *stubTournamentService) seed(mode models.Mode, state models.TournamentState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.Mode = mode
	s.states[mode] = services.Hydrate(state)
}

func hasMatch(state models.TournamentState, matchID string) bool {
	for _, m := range state.Matches {
		if m.ID == matchID {
			return true
		}
	}
	return false
}

type stubOwnerAccess struct {
	mu        sync.Mutex
	requested []string
	approved  []string
	err       error
}

func (s *stubOwnerAccess) RequestLoginLink(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.requested = append(s.requested, email)
	return nil
}

func (s *stubOwnerAccess) NotifyOwnershipApproved(ctx context.Context, mode models.Mode, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved = append(s.approved, teamID)
	return nil
}

// leagueState has one group of two teams with a single fixture.
func leagueState() models.TournamentState {
	alpha := models.Team{ID: "t1", Name: "Alpha"}
	bravo := models.Team{ID: "t2", Name: "Bravo"}
	state := models.NewTournamentState(models.ModeLeague)
	state.Teams = []models.Team{alpha, bravo}
	state.Groups = []models.Group{{ID: "group-a", Name: "Group A", Teams: []models.Team{alpha, bravo}}}
	state.Matches = []models.Match{
		{ID: "m1", TeamA: alpha, TeamB: bravo, Group: "group-a", Leg: 1, Matchday: 1, Status: models.MatchStatusScheduled},
		{ID: "m2", TeamA: bravo, TeamB: alpha, Group: "group-a", Leg: 2, Matchday: 2, Status: models.MatchStatusScheduled},
	}
	return state
}

func newTournamentRouter(h *TournamentHandler, team *TeamHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/{mode}", func(r chi.Router) {
		r.Get("/state", h.GetStateHandler)
		r.Get("/standings", h.GetStandingsHandler)
		r.Get("/standings.xlsx", h.ExportStandingsHandler)
		r.Get("/fixtures", h.GetFixturesHandler)
		r.Get("/bracket", h.GetBracketHandler)
		r.Get("/history", h.GetHistoryHandler)
		r.Post("/actions", h.DispatchActionHandler)
		r.Post("/matches/{matchID}/comments", h.AddCommentHandler)
		r.Post("/matches/{matchID}/proofs", h.UploadProofHandler)
		r.Post("/teams/{teamID}/ownership-requests", h.RequestOwnershipHandler)
		if team != nil {
			r.Patch("/my-team", team.UpdateOwnTeam)
		}
	})
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func withOwner(email string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithClaims(r.Context(), &services.Claims{Role: models.RoleOwner, Email: email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}
