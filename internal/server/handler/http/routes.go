// Package http provides the REST endpoints of the admin dashboard backend:
// resource CRUD, pageview counters, login and user info.
package http

import (
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions collects the handlers and settings NewRouter mounts.
type RouterOptions struct {
	// Apps are the path prefixes the API is mounted under, e.g. "vue-admin-template".
	Apps []string
	// Resources maps a resource path segment ("article") to its handler.
	Resources map[string]*ResourceHandler
	// Auth serves the user/login, user/info and user/logout endpoints.
	Auth *AuthHandler
	// Health serves /healthz.
	Health *HealthHandler
	// AllowedOrigins are the CORS origins the dashboard is served from.
	AllowedOrigins []string
	// RequireToken, when set, guards create, update and delete.
	RequireToken func(http.Handler) http.Handler
	// Logger is used by the request logging middleware.
	Logger *zap.Logger
}

// NewRouter constructs the HTTP handler for the dashboard API.
//
// Routes, under every prefix in Apps and for every resource:
//
//	GET  /{app}/{res}/list     → ResourceHandler.List
//	GET  /{app}/{res}/detail   → ResourceHandler.Detail
//	GET  /{app}/{res}/pv       → ResourceHandler.Pageviews
//	POST /{app}/{res}/create   → ResourceHandler.Create
//	POST /{app}/{res}/update   → ResourceHandler.Update
//	POST /{app}/{res}/delete   → ResourceHandler.Delete
//	POST /{app}/user/login     → AuthHandler.Login
//	GET  /{app}/user/info      → AuthHandler.Info
//	POST /{app}/user/logout    → AuthHandler.Logout
//	GET  /healthz              → HealthHandler.Healthz
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger(opts.Logger)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.TokenHeader},
		MaxAge:         300,
	}))
	// Bodies, when present, must be JSON.
	r.Use(chiMiddleware.AllowContentType("application/json"))

	if opts.Health != nil {
		r.Get("/healthz", opts.Health.Healthz)
	}

	for _, app := range opts.Apps {
		app = strings.Trim(app, "/")
		if app == "" {
			continue
		}
		r.Route("/"+app, func(r chi.Router) {
			for _, name := range slices.Sorted(maps.Keys(opts.Resources)) {
				mountResource(r, name, opts.Resources[name], opts.RequireToken)
			}
			if opts.Auth != nil {
				r.Route("/user", func(r chi.Router) {
					r.Post("/login", opts.Auth.Login)
					r.Get("/info", opts.Auth.Info)
					r.Post("/logout", opts.Auth.Logout)
				})
			}
		})
	}

	return r
}

func mountResource(r chi.Router, name string, h *ResourceHandler, guard func(http.Handler) http.Handler) {
	r.Route("/"+name, func(r chi.Router) {
		r.Get("/list", h.List)
		r.Get("/detail", h.Detail)
		r.Get("/pv", h.Pageviews)

		// Protected group: writes need a valid token when a guard is configured
		r.Group(func(r chi.Router) {
			if guard != nil {
				r.Use(guard)
			}
			r.Post("/create", h.Create)
			r.Post("/update", h.Update)
			r.Post("/delete", h.Delete)
		})
	})
}
