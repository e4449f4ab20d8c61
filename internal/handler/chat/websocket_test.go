package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mindhaven/backend/internal/middleware"
	coachservice "github.com/mindhaven/backend/internal/service/coach"
	"github.com/mindhaven/backend/internal/store"
)

func setupWebSocketServer(t *testing.T) *httptest.Server {
	t.Helper()

	coach := coachservice.NewService(store.NewMemory(), stubGenerator{})
	handler := NewWebSocketHandler(coach)

	r := chi.NewRouter()
	r.Use(middleware.Identity)
	handler.RegisterWebSocketRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	header := http.Header{"X-User-ID": []string{"user-1"}}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketExchange(t *testing.T) {
	server := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)

	if err := conn.WriteJSON(inboundFrame{Type: "message", Content: "I'm feeling stressed"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var frame struct {
		Type string              `json:"type"`
		Data coachservice.Result `json:"data"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read err: %v", err)
	}

	if frame.Type != "exchange" {
		t.Fatalf("expected exchange frame, got %q", frame.Type)
	}
	if len(frame.Data.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(frame.Data.Messages))
	}
}

func TestWebSocketRejectsUnknownFrame(t *testing.T) {
	server := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)

	if err := conn.WriteJSON(inboundFrame{Type: "ping"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var frame outboundFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if frame.Type != "error" {
		t.Fatalf("expected error frame, got %q", frame.Type)
	}
}

func TestWebSocketEmptyMessage(t *testing.T) {
	server := setupWebSocketServer(t)
	conn := dialWebSocket(t, server)

	if err := conn.WriteJSON(inboundFrame{Type: "message", Content: "  "}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var frame outboundFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if frame.Type != "error" || frame.Error != "message is empty" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}
