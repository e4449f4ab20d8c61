package rewards

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/backend/internal/middleware"
	rewardsService "github.com/mindhaven/backend/internal/service/rewards"
	"github.com/mindhaven/backend/pkg/utils"
)

// Handler exposes the wellness point summary.
type Handler struct {
	rewards *rewardsService.Service
}

// New creates the rewards handler.
func New(rewards *rewardsService.Service) *Handler {
	return &Handler{rewards: rewards}
}

// RegisterRoutes mounts the points endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/points", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.rewards.Summarize(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load points")
		return
	}

	utils.RespondJSON(w, http.StatusOK, summary)
}
