// Package router wires the HTTP surface: webhook, health and metrics.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dominusativos/captazap/internal/http/handlers"
	httpmiddleware "github.com/dominusativos/captazap/internal/http/middleware"
	"github.com/dominusativos/captazap/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	Webhook        *handlers.WebhookHandler
	Health         *handlers.HealthHandler
	MetricsHandler http.Handler
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Handle)
	}
	if cfg.Webhook != nil {
		r.Get("/webhook", cfg.Webhook.HandleVerify)
		r.Post("/webhook", cfg.Webhook.HandleEvents)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
