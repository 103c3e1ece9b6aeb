package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mccnet/internal/builder"
	"mccnet/internal/config"
	"mccnet/internal/generator"
	"mccnet/internal/handler"
	"mccnet/internal/hub"
	"mccnet/internal/loader"
	"mccnet/internal/metrics"
	"mccnet/internal/mutation"
	"mccnet/internal/repository/sqlite"
	"mccnet/internal/service"
	"mccnet/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var addr, dbPath, watch string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("watch") {
				cfg.Scenario.Watch = watch
			}
			return runServer(cmd.Context(), &cfg, opts.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "HTTP listen address")
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDatabasePath, "SQLite database path")
	cmd.Flags().StringVar(&watch, "watch", "", "scenario file to import on every change")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting mccnet server")

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	dbFields := []zap.Field{zap.String("path", cfg.Database.Path)}
	if stamp, ok, err := repo.LastHydrated(ctx); err != nil {
		logger.Warn("failed to read hydrate timestamp", zap.Error(err))
	} else if ok {
		dbFields = append(dbFields, zap.Time("last_hydrate", stamp))
	}
	logger.Info("database opened", dbFields...)

	eventBus := service.NewEventBus()

	sseHub := hub.New(logger.Named("hub"))
	go sseHub.Run()
	defer sseHub.Close()

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()
	defer func() {
		eventBus.Unsubscribe(eventChan)
		close(eventChan)
		<-forwarded
	}()

	images := cfg.ImageResolver()
	gen := generator.NewFaker(uint64(cfg.Generation.Seed))
	collector := metrics.NewCollector()

	graphSvc := service.NewGraphService(
		repo,
		eventBus,
		builder.New(gen, &images, cfg.Generation.MaxQuantity),
		mutation.New(gen, &images),
		collector,
		logger.Named("service"),
	)

	httpLogger := logger.Named("http")
	router := handler.NewRouter(handler.NewGraphHandler(graphSvc, httpLogger), sseHub, collector, httpLogger)

	if cfg.Scenario.Watch != "" {
		startScenarioWatch(ctx, graphSvc, cfg.Scenario, logger.Named("watcher"))
	}

	// SSE streams stay open, so there is no write timeout
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("shutting down server")

	// Release SSE clients before waiting on in-flight requests
	sseHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}

// startScenarioWatch imports the watched file once, then again on every
// debounced change. Failed imports are logged and the previous graph stays.
func startScenarioWatch(ctx context.Context, svc *service.GraphService, cfg config.ScenarioConfig, logger *zap.Logger) {
	importFile := func() {
		if err := importScenarioFile(ctx, svc, cfg.Watch); err != nil {
			logger.Warn("scenario import failed", zap.String("path", cfg.Watch), zap.Error(err))
			return
		}
		logger.Info("scenario imported", zap.String("path", cfg.Watch))
	}

	importFile()

	w := watcher.New(cfg.Watch, importFile, logger).WithDebounce(cfg.Debounce.Duration())
	go func() {
		if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scenario watcher stopped", zap.Error(err))
		}
	}()
}

func importScenarioFile(ctx context.Context, svc *service.GraphService, path string) error {
	scenario, err := loader.ReadScenario(path)
	if err != nil {
		return err
	}
	_, err = svc.ImportScenario(ctx, scenario)
	return err
}
