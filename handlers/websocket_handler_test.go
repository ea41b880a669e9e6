package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	RoomID  string          `json:"room_id"`
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env wsEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestServeWs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := brackets.NewHub(logger)
	go hub.Run()

	ts := newStubTournamentService()
	seeded := leagueState()
	seeded.Teams[0].OwnerEmail = "owner@example.com"
	ts.seed(models.ModeTwoLeagues, seeded)
	ts.syncErr = "store unavailable"

	r := chi.NewRouter()
	r.Get("/ws/{mode}", NewWebSocketHandler(hub, ts, []string{"*"}, logger).ServeWs)
	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/two_leagues"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	room := brackets.RoomForMode(models.ModeTwoLeagues)

	initial := readEnvelope(t, conn)
	assert.Equal(t, brackets.MessageStateUpdated, initial.Type)
	assert.Equal(t, room, initial.RoomID)
	var state models.TournamentState
	require.NoError(t, json.Unmarshal(initial.Payload, &state))
	assert.Equal(t, models.ModeTwoLeagues, state.Mode)
	assert.Len(t, state.Matches, 2)
	assert.NotContains(t, string(initial.Payload), "owner@example.com")

	syncErr := readEnvelope(t, conn)
	assert.Equal(t, brackets.MessageSyncError, syncErr.Type)
	assert.JSONEq(t, `{"error":"store unavailable"}`, string(syncErr.Payload))

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    brackets.MessageCommentsUpdated,
		Payload: models.CommentsByMatch{},
		RoomID:  room,
	})
	pushed := readEnvelope(t, conn)
	assert.Equal(t, brackets.MessageCommentsUpdated, pushed.Type)

	hub.BroadcastToRoom(brackets.RoomForMode(models.ModeLeague), brackets.WebSocketMessage{Type: brackets.MessageStateUpdated})

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWsUnknownMode(t *testing.T) {
	hub := brackets.NewHub(nil)
	r := chi.NewRouter()
	r.Get("/ws/{mode}", NewWebSocketHandler(hub, newStubTournamentService(), nil, slog.Default()).ServeWs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/cup", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
