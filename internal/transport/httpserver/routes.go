package httpserver

import (
	"net/http"
	"time"

	"osca-hub-go/internal/config"
	accountsdomain "osca-hub-go/internal/domain/accounts"
	"osca-hub-go/internal/transport/httpserver/handler"
	authmw "osca-hub-go/internal/transport/httpserver/middleware"
	"osca-hub-go/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, parser authmw.TokenParser, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	staff := authmw.RequireRoles(accountsdomain.RoleOSCA, accountsdomain.RoleBASCA)
	oscaOnly := authmw.RequireRoles(accountsdomain.RoleOSCA)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)
		r.Post("/auth/login", handlers.Login)

		auth := authmw.NewJWTAuth(parser, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)
			r.With(oscaOnly).Post("/auth/register", handlers.RegisterAccount)

			if cfg.OfflineSyncEnabled {
				r.With(staff).Post("/sync", handlers.SyncBatch)
			}

			r.With(staff).Get("/seniors", handlers.ListSeniors)
			r.With(staff).Post("/seniors", handlers.CreateSenior)
			r.Get("/seniors/{id}", handlers.GetSenior)
			r.With(staff).Patch("/seniors/{id}", handlers.UpdateSenior)
			r.With(staff).Delete("/seniors/{id}", handlers.DeleteSenior)

			r.Get("/appointments", handlers.ListAppointments)
			r.With(staff).Post("/appointments", handlers.CreateAppointment)
			r.Get("/appointments/{id}", handlers.GetAppointment)
			r.With(staff).Patch("/appointments/{id}", handlers.UpdateAppointment)
			r.With(staff).Delete("/appointments/{id}", handlers.DeleteAppointment)

			r.Get("/benefits", handlers.ListBenefits)
			r.With(staff).Post("/benefits", handlers.CreateBenefit)
			r.Get("/benefits/{id}", handlers.GetBenefit)
			r.With(oscaOnly).Post("/benefits/{id}/review", handlers.ReviewBenefit)

			r.Get("/documents", handlers.ListDocuments)
			r.Post("/documents", handlers.CreateDocument)
			r.Get("/documents/{id}", handlers.GetDocument)
			r.With(staff).Post("/documents/{id}/status", handlers.AdvanceDocument)
		})
	})

	return r
}
