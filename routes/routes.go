package routes

import (
	"github.com/Dosada05/quizbowl-system/handlers"
	"github.com/Dosada05/quizbowl-system/middleware"
	"github.com/Dosada05/quizbowl-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	bracketHandler *handlers.BracketHandler,
	scoreHandler *handlers.ScoreHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleReader)

	router.Route("/tournaments", func(r chi.Router) {
		// Public read access: schedules and standings are the spectator
		// surface.
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/slug/{slug}", tournamentHandler.GetBySlug)
		r.Get("/{tournamentID}/schedule", bracketHandler.Schedule)
		r.Get("/{tournamentID}/standings", scoreHandler.Standings)
		r.Get("/{tournamentID}/players/stats", scoreHandler.PlayerStats)
		r.Get("/{tournamentID}/stages/{stageID}/teams", tournamentHandler.ListTeams)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatus)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Post("/{tournamentID}/teams", tournamentHandler.AssignTeam)
			r.Post("/{tournamentID}/players", tournamentHandler.AddPlayer)
			r.Post("/{tournamentID}/stages/{stageID}/materialize", bracketHandler.Materialize)
			r.Post("/{tournamentID}/stages/{stageID}/seeds", bracketHandler.AssignSeeds)
			r.Delete("/{tournamentID}/stages/{stageID}/seeds", bracketHandler.ClearSeeds)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(staff)

			r.Put("/{gameID}/scorecard", scoreHandler.SubmitScorecard)
		})
	})
}
