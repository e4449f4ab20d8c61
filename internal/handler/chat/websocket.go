package chat

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mindhaven/backend/internal/middleware"
	coachService "github.com/mindhaven/backend/internal/service/coach"
	"github.com/mindhaven/backend/internal/store"
)

// WebSocketHandler runs coaching exchanges over a persistent connection so
// the frontend can keep one channel open for a whole chat session.
type WebSocketHandler struct {
	coach    *coachService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the live chat handler.
func NewWebSocketHandler(coach *coachService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		coach: coach,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the live chat endpoint.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleWebSocket)
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content,omitempty"`
	Timestamp      int64  `json:"timestamp,omitempty"`
}

type outboundFrame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed for user=%s: %v", userID, err)
			}
			return
		}

		switch frame.Type {
		case "message":
			h.handleMessageFrame(conn, r, userID, frame)
		default:
			h.writeError(conn, "unknown frame type: "+frame.Type)
		}
	}
}

// handleMessageFrame runs one exchange through the same pipeline as the REST
// endpoint and pushes the refreshed conversation state back.
func (h *WebSocketHandler) handleMessageFrame(conn *websocket.Conn, r *http.Request, userID string, frame inboundFrame) {
	result, err := h.coach.SendMessage(r.Context(), userID, frame.ConversationID, frame.Content)
	if err != nil {
		switch {
		case errors.Is(err, coachService.ErrEmptyMessage):
			h.writeError(conn, "message is empty")
		case errors.Is(err, store.ErrConversationNotFound):
			h.writeError(conn, "conversation not found")
		default:
			log.Printf("[ws] send failed for user=%s: %v", userID, err)
			h.writeError(conn, "failed to send message")
		}
		return
	}

	h.writeFrame(conn, outboundFrame{Type: "exchange", Data: result})
}

func (h *WebSocketHandler) writeError(conn *websocket.Conn, message string) {
	h.writeFrame(conn, outboundFrame{Type: "error", Error: message})
}

func (h *WebSocketHandler) writeFrame(conn *websocket.Conn, frame outboundFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
