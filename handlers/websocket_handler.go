package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

// NewWebSocketHandler принимает список разрешённых Origin; "*" разрешает любой.
func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeWs обрабатывает GET /ws/{mode}. Сразу после подключения клиент
// получает текущее состояние, затем все изменения режима.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	mode, err := modeFromURL(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	state, err := h.tournamentService.State(mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("failed to upgrade websocket connection", slog.String("mode", string(mode)), slog.Any("error", err))
		return
	}

	roomID := brackets.RoomForMode(mode)
	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}

	initial, err := json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.MessageStateUpdated,
		Payload: state.Public(),
		RoomID:  roomID,
	})
	if err == nil {
		client.Send <- initial
	}
	if syncErr := h.tournamentService.SyncError(mode); syncErr != "" {
		if msg, err := json.Marshal(brackets.WebSocketMessage{
			Type:    brackets.MessageSyncError,
			Payload: map[string]string{"error": syncErr},
			RoomID:  roomID,
		}); err == nil {
			client.Send <- msg
		}
	}

	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", slog.String("room", roomID))
}
