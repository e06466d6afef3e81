package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/export"
	"github.com/paperlens/paperlens/internal/extract"
	"github.com/paperlens/paperlens/internal/langdetect"
	"github.com/paperlens/paperlens/internal/pipeline"
	"github.com/paperlens/paperlens/internal/provider/embedding"
	"github.com/paperlens/paperlens/internal/provider/ocr"
	"github.com/paperlens/paperlens/internal/provider/translate"
	repo "github.com/paperlens/paperlens/internal/repository"
	"github.com/paperlens/paperlens/internal/risk"
	"github.com/paperlens/paperlens/internal/summary"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir          = flag.String("dir", "", "directory of documents to process (required)")
		dsn          = flag.String("dsn", "paperlens.db", "database DSN (postgres URL or sqlite path)")
		out          = flag.String("out", "", "output XLSX report path (optional)")
		ocrURL       = flag.String("ocr-url", "http://localhost:8501", "OCR engine base URL")
		translateURL = flag.String("translate-url", "http://localhost:8502", "translation gateway base URL")
		embedURL     = flag.String("embed-url", "http://localhost:8503", "embedding service base URL")
		skipTrans    = flag.Bool("skip-translation", false, "analyze documents in their original language")
		userLang     = flag.String("user-language", "", "reader's preferred language code")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "documents.xlsx")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx := context.Background()
	db, err := repo.Open(ctx, repo.Config{DSN: *dsn, DialTimeout: 3 * time.Second}, logger)
	if err != nil {
		printError("Error: opening database: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)
	if err := repo.Migrate(ctx, db, logger); err != nil {
		printError("Error: migrating database: %v\n", err)
		os.Exit(1)
	}

	jobsRepo := repo.NewJobRepository(db, logger)
	actionsRepo := repo.NewActionRepository(db, logger)
	auditRepo := repo.NewAuditRepository(db, logger)
	labelsRepo := repo.NewLabelRepository(db, logger)

	seed, err := classify.SeedLabels()
	if err != nil {
		printError("Error: parsing built-in labels: %v\n", err)
		os.Exit(1)
	}
	if err := labelsRepo.Seed(ctx, seed); err != nil {
		printError("Error: seeding labels: %v\n", err)
		os.Exit(1)
	}

	embedClient := embedding.NewClient(*embedURL, 30*time.Second, logger)
	labelCache := classify.NewLabelCache(labelsRepo, embedClient, "", logger)
	if err := labelCache.Load(ctx); err != nil {
		printError("Error: loading labels: %v\n", err)
		os.Exit(1)
	}

	opts := pipeline.DefaultOptions()
	opts.SkipTranslation = *skipTrans
	opts.UserLanguage = *userLang

	proc := pipeline.NewProcessor(
		logger,
		ocr.NewClient(*ocrURL, 120*time.Second, logger),
		translate.NewClient(*translateURL, 60*time.Second, logger),
		langdetect.NewDetector(opts.TargetLanguage),
		classify.NewClassifier(labelCache, embedClient, logger),
		extract.NewExtractor(logger),
		risk.NewAnalyzer(logger),
		summary.NewSummarizer(logger),
		jobsRepo,
		auditRepo,
		opts,
	)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		printError("Error: reading directory: %v\n", err)
		os.Exit(1)
	}

	processed, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(entry.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}

		job, err := jobsRepo.CreateJob(ctx, &repo.CreateJobRequest{
			Source:       constants.SourceUpload,
			Filename:     entry.Name(),
			UserLanguage: *userLang,
		})
		if err != nil {
			printError("Error: registering %s: %v\n", entry.Name(), err)
			failed++
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		if err := proc.ProcessFile(ctx, job.ID, path); err != nil {
			fmt.Printf("FAIL  %s: %v\n", entry.Name(), err)
			failed++
			continue
		}

		done, err := jobsRepo.GetJob(ctx, job.ID)
		if err != nil {
			printError("Error: reloading %s: %v\n", entry.Name(), err)
			failed++
			continue
		}
		fmt.Printf("%-12s  %-24s  %s\n", done.Status, done.DocType, entry.Name())
		processed++
	}

	data, err := export.NewService(jobsRepo, actionsRepo, logger).ExportJobsXLSX(ctx, nil, 10000)
	if err != nil {
		printError("Error: building report: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		printError("Error: writing report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nprocessed=%d failed=%d report=%s\n", processed, failed, *out)
	if failed > 0 {
		os.Exit(1)
	}
}
