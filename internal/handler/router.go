package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/mindhaven/backend/internal/handler/chat"
	moodHandler "github.com/mindhaven/backend/internal/handler/mood"
	rewardsHandler "github.com/mindhaven/backend/internal/handler/rewards"
	"github.com/mindhaven/backend/internal/middleware"
	coachService "github.com/mindhaven/backend/internal/service/coach"
	moodService "github.com/mindhaven/backend/internal/service/mood"
	rewardsService "github.com/mindhaven/backend/internal/service/rewards"
	"github.com/mindhaven/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(coach *coachService.Service, mood *moodService.Service, rewards *rewardsService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		// Everything under /api acts on behalf of the authenticated user.
		api.Use(middleware.Identity)

		chatHandler.New(coach).RegisterRoutes(api)
		chatHandler.NewWebSocketHandler(coach).RegisterWebSocketRoutes(api)
		moodHandler.New(mood).RegisterRoutes(api)
		rewardsHandler.New(rewards).RegisterRoutes(api)
	})

	return r
}
