package mood

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/backend/internal/middleware"
	moodService "github.com/mindhaven/backend/internal/service/mood"
	"github.com/mindhaven/backend/pkg/utils"
)

// Handler exposes mood check-ins.
type Handler struct {
	mood *moodService.Service
}

// New creates the mood handler.
func New(mood *moodService.Service) *Handler {
	return &Handler{mood: mood}
}

// RegisterRoutes mounts the mood endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mood", h.handleLog)
	r.Get("/mood", h.handleHistory)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Value int    `json:"value"`
		Note  string `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.mood.Log(r.Context(), middleware.UserID(r.Context()), payload.Value, payload.Note)
	if err != nil {
		if errors.Is(err, moodService.ErrInvalidMood) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to log mood")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.mood.History(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load mood history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, history)
}
