package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/backend/internal/middleware"
	coachService "github.com/mindhaven/backend/internal/service/coach"
	"github.com/mindhaven/backend/internal/store"
	"github.com/mindhaven/backend/pkg/utils"
)

// Handler exposes the coaching conversation API.
type Handler struct {
	coach *coachService.Service
}

// New creates the chat handler.
func New(coach *coachService.Service) *Handler {
	return &Handler{coach: coach}
}

// RegisterRoutes mounts conversation and messaging endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleListConversations)
	r.Post("/conversations", h.handleCreateConversation)
	r.Get("/conversations/{conversationID}/messages", h.handleTranscript)
	r.Post("/messages", h.handleSendMessage)
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.coach.Conversations(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	utils.RespondJSON(w, http.StatusOK, conversations)
}

func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.coach.StartConversation(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, conversation)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	result, err := h.coach.Transcript(r.Context(), middleware.UserID(r.Context()), conversationID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ConversationID string `json:"conversationId"`
		Content        string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.coach.SendMessage(r.Context(), middleware.UserID(r.Context()), payload.ConversationID, payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, coachService.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, "message is empty")
		case errors.Is(err, store.ErrConversationNotFound):
			utils.RespondError(w, http.StatusNotFound, "conversation not found")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
