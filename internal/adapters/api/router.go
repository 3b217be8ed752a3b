package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the middleware stack.
type Options struct {
	CORSOrigins []string
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	RateBurst int
	Logger    *slog.Logger
}

// NewRouter mounts every API route behind the shared middleware.
func NewRouter(h *APIHandler, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.HealthCheck)
	r.Get("/metrics", h.Metrics)

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(RateLimit(opts.RateLimit, opts.RateBurst))
		}
		h.RegisterRoutes(r)
	})
	return r
}

// RegisterRoutes registers the resource routes on r.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Route("/domains", func(r chi.Router) {
		r.Get("/", h.ListDomains)
		r.Post("/", h.CreateDomain)
		r.Get("/recent", h.RecentDomains)
		r.Get("/duplicates", h.Duplicates)
		r.Get("/export", h.ExportCSV)
		r.Post("/bulk", h.BulkUpdate)
		r.Post("/bulk-edit", h.CommitBulkEdit)
		r.Post("/delete", h.idsAction(h.gateway.DeleteDomains))
		r.Post("/hide", h.idsAction(h.gateway.HideDomains))
		r.Post("/unhide", h.idsAction(h.gateway.UnhideDomains))
		r.Get("/{id}", h.GetDomain)
		r.Patch("/{id}", h.UpdateDomain)
		r.Put("/{id}/label", h.AssignLabel)
	})

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)
		r.Get("/{id}", h.GetFolder)
		r.Patch("/{id}", h.UpdateFolder)
		r.Delete("/{id}", h.DeleteFolder)
		r.Post("/{id}/domains", h.AddDomainsToFolder)
		r.Delete("/{id}/domains/{domainID}", h.RemoveDomainFromFolder)
		r.Post("/{id}/move", h.MoveDomains)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/invite", h.InviteUser)
		r.Get("/{id}", h.GetUser)
		r.Patch("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.userAction(h.gateway.DeleteUser))
		r.Post("/{id}/suspend", h.userAction(h.gateway.SuspendUser))
		r.Post("/{id}/activate", h.userAction(h.gateway.ActivateUser))
	})

	r.Route("/labels", func(r chi.Router) {
		r.Get("/", h.ListLabels)
		r.Post("/", h.CreateLabel)
		r.Patch("/{id}", h.UpdateLabel)
		r.Put("/{id}", h.UpdateLabel)
		r.Delete("/{id}", h.DeleteLabel)
	})

	r.Get("/search-history", h.SearchHistory)
}
