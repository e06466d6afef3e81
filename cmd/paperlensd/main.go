package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperlens/paperlens/internal/async"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/common"
	"github.com/paperlens/paperlens/internal/export"
	"github.com/paperlens/paperlens/internal/extract"
	"github.com/paperlens/paperlens/internal/ingest"
	"github.com/paperlens/paperlens/internal/langdetect"
	"github.com/paperlens/paperlens/internal/pipeline"
	"github.com/paperlens/paperlens/internal/provider/embedding"
	"github.com/paperlens/paperlens/internal/provider/ocr"
	"github.com/paperlens/paperlens/internal/provider/translate"
	repo "github.com/paperlens/paperlens/internal/repository"
	"github.com/paperlens/paperlens/internal/risk"
	"github.com/paperlens/paperlens/internal/server"
	"github.com/paperlens/paperlens/internal/summary"
)

var version = "dev"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := repo.Migrate(ctx, db, logger); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	jobsRepo := repo.NewJobRepository(db, logger)
	actionsRepo := repo.NewActionRepository(db, logger)
	auditRepo := repo.NewAuditRepository(db, logger)
	labelsRepo := repo.NewLabelRepository(db, logger)

	seed, err := classify.SeedLabels()
	if err != nil {
		logger.Error("failed to parse built-in labels", "error", err)
		os.Exit(1)
	}
	if err := labelsRepo.Seed(ctx, seed); err != nil {
		logger.Error("failed to seed labels", "error", err)
		os.Exit(1)
	}

	ocrClient := ocr.NewClient(cfg.Providers.OCRURL, cfg.Providers.OCRTimeout, logger)
	translateClient := translate.NewClient(cfg.Providers.TranslateURL, cfg.Providers.TranslateTimeout, logger)
	embedClient := embedding.NewClient(cfg.Providers.EmbeddingURL, cfg.Providers.EmbeddingTimeout, logger)

	labelCache := classify.NewLabelCache(labelsRepo, embedClient, cfg.Pipeline.EmbeddingCachePath, logger)
	if err := labelCache.Load(ctx); err != nil {
		logger.Error("failed to load label cache", "error", err)
		os.Exit(1)
	}

	opts := pipeline.DefaultOptions()
	opts.ConfidenceThreshold = cfg.Pipeline.ConfidenceThreshold
	opts.TargetLanguage = cfg.Pipeline.TargetLanguage

	proc := pipeline.NewProcessor(
		logger,
		ocrClient,
		translateClient,
		langdetect.NewDetector(cfg.Pipeline.TargetLanguage),
		classify.NewClassifier(labelCache, embedClient, logger),
		extract.NewExtractor(logger),
		risk.NewAnalyzer(logger),
		summary.NewSummarizer(logger),
		jobsRepo,
		auditRepo,
		opts,
	)

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.JobTimeout),
	)

	e := server.New(&server.Dependencies{
		DB:         db,
		Jobs:       jobsRepo,
		Actions:    actionsRepo,
		Audit:      auditRepo,
		Labels:     labelsRepo,
		LabelCache: labelCache,
		Queue:      queue,
		Export:     export.NewService(jobsRepo, actionsRepo, logger),
		Providers: map[string]server.HealthChecker{
			"ocr":       ocrClient,
			"translate": translateClient,
			"embedding": embedClient,
		},
		UploadDir: cfg.Server.UploadDir,
		Version:   version,
		Logger:    logger,
	})

	if len(cfg.Server.WatchDirs) > 0 {
		watcher := ingest.NewService(jobsRepo, queue, logger)
		go func() {
			err := watcher.Run(ctx, ingest.WatchConfig{
				Roots:       cfg.Server.WatchDirs,
				InitialScan: true,
				Debounce:    2 * time.Second,
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("folder watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.Server.Addr)
		if err := e.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
