package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/winatecommerce96/emailpilot-rag-sub000/internal/api/handler"
	apimw "github.com/winatecommerce96/emailpilot-rag-sub000/internal/api/middleware"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/query"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store"
	syncpkg "github.com/winatecommerce96/emailpilot-rag-sub000/internal/sync"
)

// RouterDeps holds the wiring for the router.
type RouterDeps struct {
	Producer    *syncpkg.Producer
	Search      *query.Service
	SourceKinds []string
}

func NewRouter(logger *slog.Logger, s *store.Store, deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		scopes := apihandler.NewScopeHandler(logger, s, deps.SourceKinds)
		r.Route("/scopes", func(r chi.Router) {
			r.Get("/", scopes.List)
			r.Post("/", scopes.Create)
			r.Route("/{scopeID}", func(r chi.Router) {
				r.Get("/", scopes.Get)
				r.Delete("/", scopes.Delete)
			})
		})

		syncs := apihandler.NewSyncHandler(logger, s, deps.Producer)
		r.Route("/sync", func(r chi.Router) {
			r.Get("/runs/{runID}", syncs.GetRun)
			r.Route("/{scopeID}", func(r chi.Router) {
				r.Post("/", syncs.Trigger)
				r.Get("/status", syncs.Status)
				r.Get("/runs", syncs.ListRuns)
				r.Get("/log", syncs.Log)
				r.Delete("/state", syncs.ClearState)
			})
		})

		search := apihandler.NewSearchHandler(logger, deps.Search)
		r.Post("/search", search.Search)
	})

	return r
}
