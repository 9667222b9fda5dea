package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/XavierBriggs/laxstat/internal/handlers"
	"github.com/XavierBriggs/laxstat/internal/middleware"
)

// Routes holds everything the router dispatches to
type Routes struct {
	API     *handlers.Handler
	Pages   *handlers.PageHandler
	Exports *handlers.ExportHandler

	// Directory served under /static/logos/; empty disables it
	LogoDir string

	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter builds the dashboard's chi router
func NewRouter(routes Routes) *chi.Mux {
	if routes.RequestTimeout <= 0 {
		routes.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(routes.RequestTimeout))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: routes.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", routes.API.HealthCheck)

	// Pages
	r.Get("/", routes.Pages.Home)
	r.Get("/teams", routes.Pages.Teams)
	r.Get("/games", routes.Pages.Games)
	r.Get("/games/chart", routes.Pages.GameChart)

	// CSV exports
	r.Get("/teams/csv", routes.Exports.ExportTeams)
	r.Get("/games/csv", routes.Exports.ExportGames)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", routes.API.GetGames)
		r.Get("/teams", routes.API.GetTeams)
		r.Get("/teams/names", routes.API.GetTeamNames)
		r.Get("/schedule", routes.API.GetSchedule)
		r.Get("/results", routes.API.GetResults)
	})

	if routes.LogoDir != "" {
		r.Handle("/static/logos/*", http.StripPrefix("/static/logos/", http.FileServer(http.Dir(routes.LogoDir))))
	}

	r.NotFound(routes.Pages.NotFound)

	return r
}
