package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface.
func NewRouter(h *SafetyHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/users/{user_id}", func(r chi.Router) {
		r.Post("/location", h.IngestLocation)
		r.Post("/panic", h.TriggerPanic)
		r.Get("/nearby", h.Nearby)
		r.Get("/area", h.Area)

		r.Route("/safe-exit", func(r chi.Router) {
			r.Get("/", h.GetSafeExit)
			r.Post("/", h.ConfigureSafeExit)
			r.Post("/toggle", h.ToggleSafeExit)
			r.Post("/reset", h.ResetSafeExit)
		})
	})

	r.Route("/alerts/{alert_id}", func(r chi.Router) {
		r.Post("/track", h.TrackAlert)
		r.Post("/resolve", h.ResolveAlert)
	})

	r.Get("/ws/{user_id}", h.Stream)

	return r
}
