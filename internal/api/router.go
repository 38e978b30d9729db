package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/kanacards/internal/api/middleware"
	"github.com/phrazzld/kanacards/internal/api/shared"
)

// CardCounter reports how many cards are stored. The health check uses it
// to prove the database is reachable.
type CardCounter interface {
	Count(ctx context.Context) (int, error)
}

// RouterDeps holds the handlers and collaborators the router mounts.
type RouterDeps struct {
	Cards    *CardHandler
	Transfer *TransferHandler
	Counter  CardCounter
	Logger   *slog.Logger
}

// NewRouter creates and configures the application router with all routes
// and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(log))

	r.Get("/health", healthHandler(deps.Counter, log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/cards", func(r chi.Router) {
			r.Get("/next", deps.Cards.GetNextReviewCard)
			r.Get("/due", deps.Cards.ListDueCards)
			r.Get("/{id}", deps.Cards.GetCard)
			r.Get("/{id}/due", deps.Cards.GetDaysUntilDue)
			r.Post("/{id}/answer", deps.Cards.SubmitAnswer)
			r.Put("/{id}/kana", deps.Cards.SetKana)
			r.Post("/{id}/postpone", deps.Cards.PostponeCard)
		})

		if deps.Transfer != nil {
			r.Post("/import", deps.Transfer.Import)
			r.Get("/export", deps.Transfer.Export)
		}
	})

	return r
}

func healthHandler(counter CardCounter, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if counter == nil {
			shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
			return
		}

		n, err := counter.Count(r.Context())
		if err != nil {
			log.Error("health check failed", slog.String("error", err.Error()))
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}

		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Cards: n})
	}
}
