package routes

import (
	"net/http"

	"github.com/Dosada05/efootball-hub/handlers"
	"github.com/Dosada05/efootball-hub/middleware"
	"github.com/Dosada05/efootball-hub/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins []string
	Validator      middleware.TokenValidator
	// Gatherer отдаётся на /metrics; nil отключает эндпоинт.
	Gatherer prometheus.Gatherer
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.Validator)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Get("/ws/{mode}", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/admin/login", authHandler.AdminLogin)
			r.Post("/owner-link", authHandler.RequestOwnerLink)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/owner-tokens", authHandler.IssueOwnerToken)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Get("/admin/dashboard", dashboardHandler.Stats)
		})

		r.Route("/{mode}", func(r chi.Router) {
			// Публичные маршруты
			r.Get("/state", tournamentHandler.GetStateHandler)
			r.Get("/standings", tournamentHandler.GetStandingsHandler)
			r.Get("/standings.xlsx", tournamentHandler.ExportStandingsHandler)
			r.Get("/fixtures", tournamentHandler.GetFixturesHandler)
			r.Get("/bracket", tournamentHandler.GetBracketHandler)
			r.Get("/history", tournamentHandler.GetHistoryHandler)
			r.Post("/matches/{matchID}/comments", tournamentHandler.AddCommentHandler)
			r.Post("/teams/{teamID}/ownership-requests", tournamentHandler.RequestOwnershipHandler)

			// Только для администратора
			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/actions", tournamentHandler.DispatchActionHandler)
			})

			// Администратор или владелец команды
			r.Group(func(r chi.Router) {
				r.Use(authenticate, middleware.Authorize(models.RoleAdmin, models.RoleOwner))
				r.Post("/matches/{matchID}/proofs", tournamentHandler.UploadProofHandler)
			})

			// Только для владельца команды
			r.Group(func(r chi.Router) {
				r.Use(authenticate, middleware.Authorize(models.RoleOwner))
				r.Patch("/my-team", teamHandler.UpdateOwnTeam)
			})
		})
	})
}
