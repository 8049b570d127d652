// internal/router/router.go
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/unclebandit/campaignhub-backend/internal/controller"
	"github.com/unclebandit/campaignhub-backend/internal/handler"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
)

type Deps struct {
	Auth      *controller.AuthController
	Contacts  *controller.ContactController
	Campaigns *controller.CampaignController

	Tokens  middleware.TokenVerifier
	Limiter *middleware.LimiterStore
	Logger  *slog.Logger

	CORSOrigins []string
}

// New builds the HTTP surface. Everything lives under /api; unknown routes
// and unsupported methods both answer 404 {"error":"Route not found"}.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(corsHandler(d.CORSOrigins).Handler)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.NotFound)

	requireAuth := middleware.RequireAuth(d.Tokens)
	limit := func(next http.Handler) http.Handler { return next }
	if d.Limiter != nil {
		limit = d.Limiter.Limit
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)

		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", d.Auth.Register)
			r.With(limit).Post("/login", d.Auth.Login)
			r.With(requireAuth).Get("/me", d.Auth.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			// Contact routes
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", d.Contacts.ListContacts)
				r.Post("/", d.Contacts.CreateContact)
				r.Get("/{id}", d.Contacts.GetContact)
				r.Put("/{id}", d.Contacts.UpdateContact)
				r.Delete("/{id}", d.Contacts.DeleteContact)
			})

			// Campaign routes
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", d.Campaigns.ListCampaigns)
				r.Post("/", d.Campaigns.CreateCampaign)
				r.Get("/{id}", d.Campaigns.GetCampaignDetails)
				r.Put("/{id}", d.Campaigns.UpdateCampaign)
				r.Delete("/{id}", d.Campaigns.DeleteCampaign)
				r.Get("/{id}/contacts", d.Campaigns.ListCampaignContacts)
				r.Post("/{id}/contacts", d.Campaigns.AddContacts)
				r.Delete("/{id}/contacts/{contactId}", d.Campaigns.RemoveContact)
				r.Post("/{id}/preview", d.Campaigns.PersonalizedPreview)
			})
		})
	})

	return r
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         int((12 * time.Hour).Seconds()),
	})
}
