package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/MimoJanra/sitewatch/internal/api"
	"github.com/MimoJanra/sitewatch/internal/checker"
	"github.com/MimoJanra/sitewatch/internal/config"
	"github.com/MimoJanra/sitewatch/internal/logging"
	"github.com/MimoJanra/sitewatch/internal/notifications"
	"github.com/MimoJanra/sitewatch/internal/storage"
)

// @title           SiteWatch API
// @version         1.0
// @description     REST API for uptime monitors, their check history and uptime.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http
func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "sitewatch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := storage.InitDB(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close db", zap.Error(err))
		}
	}()

	monitorRepo := storage.NewMonitorRepo(db)
	historyRepo := storage.NewHistoryRepo(db)

	prober := checker.NewProber(cfg.Prober, logger)
	evaluator := checker.Evaluator{EnforceExpectedStatus: cfg.Prober.EnforceExpectedStatus}
	dispatcher := notifications.NewDispatcher(notifications.NewMailer(cfg.SMTP, logger), logger)
	if !cfg.SMTP.Enabled() {
		logger.Warn("smtp.host not set, notifications will only be logged")
	}

	scheduler := checker.NewScheduler(cfg.Scheduler, monitorRepo, prober, dispatcher, logger,
		checker.WithEvaluator(evaluator))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	server := &api.Server{
		MonitorRepo: monitorRepo,
		HistoryRepo: historyRepo,
		Scheduler:   scheduler,
		Logger:      logger,
	}
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api.SetupRouter(server),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler stop incomplete", zap.Error(err))
	}
	logger.Info("server stopped")
	return runErr
}
