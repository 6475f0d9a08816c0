package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"parley/internal/config"
	"parley/internal/httpserver"
	"parley/internal/security"
	"parley/internal/store/sqlite"
	"parley/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	db, err := sqlite.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	tokenSvc := security.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := security.NewPasswordHasher(0)

	hub := ws.NewHub(log)

	router := httpserver.NewRouter(cfg, db, hub, tokenSvc, hasher, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
