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
	"github.com/rs/zerolog"

	"example.com/daynotes/internal/api"
	"example.com/daynotes/internal/config"
	"example.com/daynotes/internal/db"
	"example.com/daynotes/internal/notes"
	"example.com/daynotes/internal/ratelimit"
	"example.com/daynotes/internal/service"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("open store")
	}
	defer closeStore()

	limiter := ratelimit.New(api.Limits(cfg))
	svc := service.New(store, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.New(svc, limiter, cfg, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("backend", cfg.StorageBackend).
			Bool("default_token", cfg.APIToken == "please-change-this-default-token").
			Msg("daynotes API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func openStore(ctx context.Context, cfg config.Config) (notes.Store, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
		conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
		if err != nil {
			return nil, nil, err
		}
		store, err := notes.NewPostgresStore(ctx, conn.SQL)
		if err != nil {
			_ = conn.SQL.Close()
			return nil, nil, err
		}
		return store, func() {
			_ = store.Close()
			_ = conn.SQL.Close()
		}, nil
	case "file":
		store, err := notes.NewFileStore(cfg.NotesFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return notes.NewMemoryStore(), func() {}, nil
	}
}
