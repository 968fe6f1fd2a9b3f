package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmrec/internal/config"
	httpserver "github.com/Clark-Hu/filmrec/internal/http"
	"github.com/Clark-Hu/filmrec/internal/logging"
	"github.com/Clark-Hu/filmrec/internal/recommend"
	"github.com/Clark-Hu/filmrec/internal/repository"
	"github.com/Clark-Hu/filmrec/internal/reviews"
	"github.com/Clark-Hu/filmrec/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dbCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.DBConnTimeoutSecs)*time.Second)
	defer cancel()

	catalog, err := openCatalog(dbCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("connect database")
	}
	defer catalog.close()

	reviewClient, err := reviews.NewHTTPClient(cfg.ReviewsAPIURL, cfg.ReviewsAPIPath, cfg.ReviewsAPIKey, time.Duration(cfg.ReviewsTimeoutSecs)*time.Second, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init reviews client")
	}
	breaker := reviews.NewBreakerClient(reviewClient, reviews.DefaultBreakerSettings(), logger)

	engine := recommend.NewEngine(catalog.repo.Films, breaker, logger)
	server := httpserver.New(cfg, catalog.health, catalog.repo.Films, engine, logger)

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

type catalog struct {
	repo   *repository.Repository
	health httpserver.HealthChecker
	close  func()
}

func openCatalog(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*catalog, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		st, err := store.OpenSQLite(ctx, cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		return &catalog{
			repo:   repository.NewSQLite(st),
			health: st,
			close: func() {
				if err := st.Close(); err != nil {
					logger.Warn().Err(err).Msg("close sqlite catalog")
				}
			},
		}, nil
	default:
		st, err := store.New(ctx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger,
		})
		if err != nil {
			return nil, err
		}
		return &catalog{repo: repository.New(st), health: st, close: st.Close}, nil
	}
}
