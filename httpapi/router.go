// Package httpapi exposes a magicpix session to a browser front-end over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mhpenta/magicpix"
)

// NewRouter wires the session endpoints.
func NewRouter(o *magicpix.Orchestrator, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{orchestrator: o, logger: logger}

	r := chi.NewRouter()
	r.Use(
		RequestID,
		middleware.RealIP,
		RequestLogger(logger),
		middleware.Recoverer,
	)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/suggestions", h.Suggestions)
		r.Post("/generate", h.Generate)
		r.Post("/edit", h.Edit)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Session)
			r.Post("/create", h.GoToCreate)
			r.Post("/history/{id}/select", h.SelectFromHistory)
			r.Get("/current/download", h.DownloadCurrent)
		})
	})

	return r
}
