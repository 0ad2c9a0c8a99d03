package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/config"
	"github.com/leadforge/leadforge/pkg/dispatch"
	"github.com/leadforge/leadforge/pkg/eventbus"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/scraper"
	"github.com/leadforge/leadforge/pkg/store/postgres"
	redisclient "github.com/leadforge/leadforge/pkg/store/redis"
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

	loop := dispatch.NewLoop(orchestrator, logger, cfg.Dispatch.PollInterval, cfg.Dispatch.EmailLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("dispatcher shutting down")
}
