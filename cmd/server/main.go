package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/top-movies/internal/config"
	"github.com/iliyamo/top-movies/internal/database"
	"github.com/iliyamo/top-movies/internal/handler"
	"github.com/iliyamo/top-movies/internal/logger"
	"github.com/iliyamo/top-movies/internal/middleware"
	"github.com/iliyamo/top-movies/internal/repository"
	"github.com/iliyamo/top-movies/internal/router"
	"github.com/iliyamo/top-movies/internal/service"
	"github.com/iliyamo/top-movies/internal/tmdb"
)

func main() {
	envErr := godotenv.Load() // optional .env file
	cfg := config.Load()      // Load environment config
	log := logger.New("top-movies", cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn("could not read .env", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		log.Error("database unavailable", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db, cfg.DBDriver); err != nil {
		log.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unreachable, search rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit"))

	var events service.Publisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = &service.AMQPPublisher{URL: cfg.RabbitMQURL, Log: log.Named("events")}
	}

	movies := handler.NewMovieHandler(
		repository.NewMovieRepo(db),
		tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBToken, cfg.TMDBTimeout, log.Named("tmdb")),
		events,
		log.Named("movies"),
		cfg.TMDBImageBase,
		cfg.ListOrder,
	)
	e, err := router.New(router.Options{
		Movies:        movies,
		DB:            db,
		SessionSecret: cfg.SessionSecret,
		CSRFTTL:       cfg.CSRFTTL,
		SearchLimit:   limiter,
		Log:           log.Named("http"),
	})
	if err != nil {
		log.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "db", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("bye")
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == config.DriverMySQL {
		return database.OpenMySQL(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	return database.OpenSQLite(ctx, cfg.SQLitePath)
}
