package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/crawl-registration-api/internal/auth"
	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/gdg-garage/crawl-registration-api/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

type Handlers struct {
	Public       *PublicHandler
	Registration *RegistrationHandler
	Admin        *AdminHandler
	Limiter      *ratelimit.RateLimiter
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) huma.API {
	// Forwarded headers are client-controlled unless a proxy overwrites them.
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize Huma API
	hcfg := huma.DefaultConfig("D79 Fall Crawls API", "1.0.0")
	hcfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(r, hcfg)
	registerOperations(api, h)
	return api
}

func registerOperations(api huma.API, h Handlers) {
	// Public routes
	huma.Get(api, "/api/locations", h.Public.HandleLocations)
	huma.Get(api, "/api/events", h.Public.HandleEvents)
	huma.Get(api, "/api/location-availability", h.Public.HandleLocationAvailability)
	huma.Get(api, "/api/availability", h.Public.HandleAvailability)
	huma.Post(api, "/api/register", h.Registration.HandleRegister, func(o *huma.Operation) {
		if h.Limiter != nil {
			o.Middlewares = append(o.Middlewares, h.Limiter.Middleware(api))
		}
	})

	// Admin routes, password in body
	huma.Post(api, "/api/admin/registrations", h.Admin.HandleRegistrations)
	huma.Post(api, "/api/admin/send-reminders", h.Admin.HandleSendReminders)
	huma.Post(api, "/api/admin/session", h.Admin.HandleSession)
	huma.Post(api, "/api/seed-events", h.Admin.HandleSeed)

	// Admin routes, session cookie
	cookieAuth := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
		o.Middlewares = append(o.Middlewares, h.Admin.auth.AdminMiddleware(api))
	}
	huma.Get(api, "/api/admin/export/participants", h.Admin.HandleExportParticipants, cookieAuth)
	huma.Get(api, "/api/admin/export/summary", h.Admin.HandleExportSummary, cookieAuth)
}
