// Package app wires the application together: configuration, logging,
// database pool, repositories, services and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/adaptivelang/srs-backend/internal/adapter/postgres"
	itemrepo "github.com/adaptivelang/srs-backend/internal/adapter/postgres/item"
	placementrepo "github.com/adaptivelang/srs-backend/internal/adapter/postgres/placement"
	"github.com/adaptivelang/srs-backend/internal/adapter/postgres/reviewlog"
	"github.com/adaptivelang/srs-backend/internal/adapter/postgres/reviewstate"
	"github.com/adaptivelang/srs-backend/internal/config"
	"github.com/adaptivelang/srs-backend/internal/service/placement"
	"github.com/adaptivelang/srs-backend/internal/service/placement/cat"
	"github.com/adaptivelang/srs-backend/internal/service/review"
	"github.com/adaptivelang/srs-backend/internal/service/review/fsrs"
	"github.com/adaptivelang/srs-backend/internal/transport/middleware"
	"github.com/adaptivelang/srs-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, initializes
// the logger and database pool, wires services and handlers, and serves
// HTTP until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("srs_model", cfg.SRS.Model),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	states := reviewstate.New(pool)
	logs := reviewlog.New(pool)
	items := itemrepo.New(pool)
	sessions := placementrepo.New(pool)
	tx := postgres.NewTxManager(pool)

	fsrsParams := fsrs.DefaultParameters()
	fsrsParams.DesiredRetention = cfg.SRS.DesiredRetention
	fsrsParams.MaxIntervalDays = cfg.SRS.MaxIntervalDays

	reviewSvc, err := review.NewService(logger, states, logs, items, tx, review.Config{
		Model: cfg.SRS.Model,
		FSRS:  fsrsParams,
	})
	if err != nil {
		return fmt.Errorf("review service: %w", err)
	}

	placementSvc := placement.NewService(logger, sessions, items, tx, cat.Parameters{
		MinItems:  cfg.Placement.MinItems,
		MaxItems:  cfg.Placement.MaxItems,
		SETarget:  cfg.Placement.SETarget,
		InitialSE: cfg.Placement.InitialSE,
	})

	router := rest.NewRouter(
		rest.NewReviewHandler(reviewSvc, logger),
		rest.NewPlacementHandler(placementSvc, logger),
		rest.NewHealthHandler(pool, BuildVersion()),
	)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(router)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
