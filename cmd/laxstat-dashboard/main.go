package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/XavierBriggs/laxstat/internal/config"
	"github.com/XavierBriggs/laxstat/internal/handlers"
	"github.com/XavierBriggs/laxstat/internal/logging"
	"github.com/XavierBriggs/laxstat/internal/providers/laxapi"
	"github.com/XavierBriggs/laxstat/internal/selection"
	"github.com/XavierBriggs/laxstat/internal/server"
	"github.com/XavierBriggs/laxstat/internal/teamdir"
	"github.com/XavierBriggs/laxstat/internal/views"
)

func main() {
	// A missing .env is fine; the environment may already be set
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not read .env")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("backend", cfg.Backend.URL).
		Int("first_season", cfg.Seasons.First).
		Int("last_season", cfg.Seasons.Last).
		Msg("starting laxstat dashboard")

	client := laxapi.New(laxapi.Options{
		BaseURL:     cfg.Backend.URL,
		Timeout:     cfg.Backend.Timeout,
		RateLimit:   rate.Limit(cfg.Backend.RPS),
		Attempts:    cfg.Backend.Retries,
		ProbeSeason: cfg.Seasons.Last,
	})

	dir, err := teamdir.Load(cfg.Assets.TeamsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Assets.TeamsFile).Msg("failed to load team directory")
	}
	log.Info().Int("teams", dir.Len()).Msg("loaded team directory")

	renderer, err := views.New(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}

	// Startup probe; the dashboard still serves error pages while the backend is down
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Ping(probeCtx); err != nil {
		log.Warn().Err(err).Msg("stats backend not reachable yet")
	} else {
		log.Info().Msg("connected to stats backend")
	}
	cancelProbe()

	seasons := selection.Defaults{
		FirstSeason: cfg.Seasons.First,
		LastSeason:  cfg.Seasons.Last,
		Clock:       clockwork.NewRealClock(),
	}

	logoDir := cfg.Assets.LogoDir
	if _, err := os.Stat(logoDir); err != nil {
		log.Warn().Str("dir", logoDir).Msg("logo directory missing, team logos disabled")
		logoDir = ""
	}

	router := server.NewRouter(server.Routes{
		API:            handlers.NewHandler(client, seasons),
		Pages:          handlers.NewPageHandler(client, renderer, dir, seasons),
		Exports:        handlers.NewExportHandler(client, seasons),
		LogoDir:        logoDir,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: 60 * time.Second,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("dashboard listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal().Err(err).Msg("server error")

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("shutting down")

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			if err := srv.Close(); err != nil {
				log.Error().Err(err).Msg("could not stop server")
			}
		}
	}

	log.Info().Msg("shutdown complete")
}
