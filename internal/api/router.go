package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vitals-monitor/internal/observability"
)

func Router(h *VitalsHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Second))

	r.Post("/v1/vitals", h.Evaluate)
	r.Get("/v1/rules", h.Rules)
	r.Get("/v1/rules/custom", h.CustomRules)
	r.Get("/v1/limits", h.Limits)
	r.Put("/v1/limits/{vital}", h.SetLimits)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	return r
}
