package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/takpuzzles/internal/api"
	"github.com/vytor/takpuzzles/internal/config"
	"github.com/vytor/takpuzzles/internal/db"
	"github.com/vytor/takpuzzles/internal/glicko"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/random"
	"github.com/vytor/takpuzzles/internal/repository/sqlite"
	"github.com/vytor/takpuzzles/internal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithJSON(cfg.LogFormat == "json"),
		logger.WithColors(cfg.LogFormat != "json"),
	)
	logger.SetDefault(log)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("tak puzzle server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("onboarding_puzzle_ids=%v", cfg.OnboardingPuzzleIDs)
	log.Debug("candidate_pool_upper_bound=%d", cfg.CandidatePoolUpperBound)
	log.Debug("rating_excluded_players=%v", cfg.RatingExcludedPlayers)
	log.Debug("glicko_tau=%g", cfg.GlickoTau)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	puzzleRepo := sqlite.NewPuzzleRepository(database.DB)
	attemptRepo := sqlite.NewAttemptRepository(database.DB)
	playerRepo := sqlite.NewPlayerRepository(database.DB)

	srv := &api.Server{
		PuzzleService: services.NewPuzzleService(puzzleRepo, attemptRepo, services.SelectionConfig{
			OnboardingPuzzleIDs:     cfg.OnboardingPuzzleIDs,
			CandidatePoolUpperBound: cfg.CandidatePoolUpperBound,
		}, random.Default()),
		AttemptService: services.NewAttemptService(attemptRepo),
		RatingService: services.NewRatingService(puzzleRepo, attemptRepo, playerRepo, services.RatingConfig{
			ExcludedPlayers: cfg.RatingExcludedPlayers,
			Glicko:          glicko.Config{Tau: cfg.GlickoTau},
		}),
		DB:             database,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}
	log.Info("tak puzzle server stopped")
}
