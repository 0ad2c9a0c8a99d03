package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/apiserver"
	"github.com/leadforge/leadforge/pkg/config"
	"github.com/leadforge/leadforge/pkg/dispatch"
	"github.com/leadforge/leadforge/pkg/eventbus"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/scraper"
	"github.com/leadforge/leadforge/pkg/store/postgres"
	redisclient "github.com/leadforge/leadforge/pkg/store/redis"
	"github.com/leadforge/leadforge/pkg/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redis, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	bus := eventbus.NewBus(redis.Client())

	workflowRepo := postgres.NewWorkflowRepository(db.DB())
	emailRepo := postgres.NewOutreachEmailRepository(db.DB())
	scheduleRepo := postgres.NewScheduleRepository(db.DB())
	runRepo := postgres.NewScrapeRunRepository(db.DB())
	activityRepo := postgres.NewActivityRepository(db.DB())
	dealRepo := postgres.NewDealRepository(db.DB())

	scanner := dispatch.NewTriggerScanner(workflowRepo, logger)
	drainer := dispatch.NewEmailDrainer(
		emailRepo,
		mailer.NewClient(&cfg.Mail),
		mailer.NewRenderer(cfg.Mail.TrackingBase),
		cfg.Mail.FromAddress,
		bus,
		logger,
	)

	var scrapes dispatch.ScrapePhase
	if cfg.Scraper.Enabled() {
		scrapes = scraper.NewDispatcher(scheduleRepo, runRepo, scraper.NewClient(&cfg.Scraper), logger)
	} else {
		logger.Info("scrape dispatch disabled, no provider token configured")
	}

	lock := redisclient.NewPassLock(redis.Client(), cfg.Dispatch.LockTTL)
	orchestrator := dispatch.NewOrchestrator(scanner, drainer, scrapes, lock, bus, logger)

	executor := workflow.NewStepExecutor(activityRepo, dealRepo, logger)
	runner := workflow.NewRunner(executor, bus, logger, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)

	server := apiserver.NewServer(db, cfg, logger, orchestrator, runner)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.ReadTimeout * 2,
	}

	go func() {
		logger.Info("starting api server", zap.Int("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		logger.Info("starting metrics server", zap.Int("port", cfg.Server.MetricsPort))
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	cancel()
	runner.Stop()
}
