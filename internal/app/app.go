package app

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"

	_ "github.com/lib/pq"

	"AperoScanner/internal/config"
	"AperoScanner/internal/infrastructure/crawler"
	"AperoScanner/internal/infrastructure/feed"
	"AperoScanner/internal/infrastructure/harvester"
	"AperoScanner/internal/infrastructure/render"
	"AperoScanner/internal/infrastructure/scheduler"
	"AperoScanner/internal/infrastructure/storage"
	"AperoScanner/internal/infrastructure/telegram"
	"AperoScanner/internal/logging"
	"AperoScanner/internal/ports"
	"AperoScanner/internal/scanner"
	"AperoScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	linkCrawler := crawler.New(nil, crawler.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Crawler.Timeout(),
		Delay:     cfg.Crawler.Delay(),
	}, baseLogger.With("component", "crawler"))

	visitedStore := crawler.NewVisitedStore(filepath.Join(cfg.Storage.DataDir, "visited_urls.json"))

	registry := scanner.NewRegistry()
	registry.Register(harvester.NewAPIScanner(nil, nil, baseLogger.With("component", "scanner.api")))
	registry.Register(crawler.NewCrawlScanner(linkCrawler, visitedStore, baseLogger.With("component", "scanner.crawl")))
	registry.Register(render.NewRenderScanner(
		render.NewClient(cfg.Render.Endpoint, cfg.Render.APIKey),
		linkCrawler,
		baseLogger.With("component", "scanner.render"),
	))

	source := scanner.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	var (
		db         *sql.DB
		repository ports.EventRepository
	)
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("database unavailable, running without dedup history", "error", err)
		} else {
			db = opened
			repository = storage.NewPostgresRepository(db)
		}
	}

	var writer ports.FeedWriter
	if w, err := storage.NewJSONFeedWriter(cfg.Storage.DataDir); err != nil {
		baseLogger.Warn("feed output unavailable", "error", err)
	} else {
		writer = w
	}

	var uploader ports.FeedUploader
	if cfg.Feed.UploadEndpoint != "" {
		uploader = feed.NewUploader(cfg.Feed.UploadEndpoint, cfg.Feed.APIKey)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repository,
		Writer:     writer,
		Uploader:   uploader,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, db: db}
}

// Run performs a single discovery run, or blocks driving scheduled runs
// when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	defer a.close()

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.ProcessRun(ctx)
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	scheduled := usecase.NewScheduler(driver, a.pipeline)
	if err := scheduled.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return scheduled.Stop(context.Background())
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
