package httpserver

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"async-standup/internal/config"
	"async-standup/internal/domain/identity"
	"async-standup/internal/transport/httpserver/handler"
	authmw "async-standup/internal/transport/httpserver/middleware"
	"async-standup/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(sentryHandler.Handle)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSAllowedOrigins))

	sessions := authmw.NewSessionAuth(handlers.Identity, cfg.Session.CookieName, log)
	capability := authmw.NewResponseCapability(handlers.Standups, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Post("/login", handlers.Login)
		r.Post("/logout", handlers.Logout)
		r.Post("/activate", handlers.Activate)

		r.Group(func(r chi.Router) {
			r.Use(capability.Middleware)

			r.Post("/responses/{"+authmw.ResponseURLParam+"}", handlers.SubmitResponse)
			r.Patch("/responses/{"+authmw.ResponseURLParam+"}", handlers.EditResponse)
		})

		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)

			r.Get("/user", handlers.CurrentUser)

			r.Get("/team-members", handlers.ListTeamMembers)

			r.Get("/standups", handlers.ListStandups)
			r.Get("/standups/{id}", handlers.GetStandup)
			r.Post("/standups/{id}/assign", handlers.AssignTeamMembers)
			r.Get("/standups/{id}/assignments", handlers.ListAssignments)

			r.Post("/responses/{id}/reactions", handlers.ToggleReaction)
			r.Get("/responses/{id}/reactions", handlers.ListReactions)
			r.Post("/responses/{id}/comments", handlers.AddComment)
			r.Get("/responses/{id}/comments", handlers.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireRole(identity.RoleAdmin))

				r.Post("/team-members", handlers.CreateTeamMember)
				r.Delete("/team-members/{id}", handlers.DeleteTeamMember)
				r.Post("/standups", handlers.CreateStandup)
			})
		})
	})

	return r
}
