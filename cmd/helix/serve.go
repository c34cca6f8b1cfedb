package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/theplant/helix/httpapi"
	"github.com/theplant/helix/internal/config"
	"github.com/theplant/helix/model"
	"github.com/theplant/helix/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func newRepositories(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Repositories, error) {
	limits := cfg.Query.Limits()
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using the in-memory store, data is lost on exit")
		return store.NewMemoryRepositories(limits)
	}

	db, err := openDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := store.AutoMigrate(ctx, db, model.All()...); err != nil {
			return nil, err
		}
	}
	return store.NewGormRepositories(db, limits)
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	repos, err := newRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(httpapi.New(repos, log)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Wrap(server.Shutdown(shutdownCtx), "shutdown")
	})
	return g.Wait()
}
