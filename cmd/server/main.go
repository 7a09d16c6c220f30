package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/book-reviews/db"
	"github.com/Clark-Hu/book-reviews/internal/auth"
	"github.com/Clark-Hu/book-reviews/internal/config"
	httpserver "github.com/Clark-Hu/book-reviews/internal/http"
	"github.com/Clark-Hu/book-reviews/internal/logging"
	"github.com/Clark-Hu/book-reviews/internal/repository"
	"github.com/Clark-Hu/book-reviews/internal/service"
	"github.com/Clark-Hu/book-reviews/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(logging.Options{Service: "book-reviews"})
		bootLogger.Fatal().Err(err).Msg("config error")
	}

	logger := logging.New(logging.Options{
		Service: "book-reviews",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, storeOptions(cfg, logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(dbCtx, st); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	repo := repository.New(st)

	authSvc, err := auth.NewService(repo.Users, auth.Options{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTExpiry,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init auth service")
	}

	server := httpserver.New(cfg, httpserver.Deps{
		Health:  st,
		Auth:    authSvc,
		Catalog: service.NewCatalog(repo.Books, repo.Reviews, logger),
		Reviews: service.NewReviews(repo.Books, repo.Reviews, logger),
		Logger:  logger,
	})

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("server stopped")
}

func storeOptions(cfg config.Config, logger zerolog.Logger) store.Options {
	return store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		AcquireTimeout:         time.Duration(cfg.DBAcquireSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}
}
