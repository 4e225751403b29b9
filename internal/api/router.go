package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(h.notFound)

	r.Get("/", h.home)
	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/db/test", h.dbTest)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.listEntries)
			r.Post("/", h.createEntry)
			r.Get("/{id}", h.getEntry)
		})

		// Manual trigger for the scheduled task; GET kept for compatibility
		// with external schedulers that only issue GETs.
		r.Get("/cron/run", h.cronRun)
		r.Post("/cron/run", h.cronRun)
		r.Get("/test_db", h.listRuns)

		r.Get("/companies", h.listCompanies)
		r.Get("/links", h.listLinks)
	})

	return r
}
