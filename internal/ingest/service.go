package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/async"
	"github.com/paperlens/paperlens/internal/repository"
)

// Service registers discovered files as jobs and queues them. Each path is
// ingested at most once per process lifetime; a file rewritten in place after
// that needs a re-upload through the API.
type Service struct {
	jobs   repository.JobRepository
	queue  async.Queue
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewService(jobs repository.JobRepository, queue async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jobs:   jobs,
		queue:  queue,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Run consumes watcher events until ctx is done. Errors on individual files
// are logged and skipped; the loop keeps going.
func (s *Service) Run(ctx context.Context, cfg WatchConfig) error {
	events, errs, err := StartWatcher(ctx, cfg, s.logger)
	if err != nil {
		return err
	}
	s.logger.Info("ingest.watcher.started", "roots", len(cfg.Roots))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			s.logger.Warn("ingest.watcher.error", "error", err)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			s.ingest(ctx, path)
		}
	}
}

func (s *Service) ingest(ctx context.Context, path string) {
	s.mu.Lock()
	if _, dup := s.seen[path]; dup {
		s.mu.Unlock()
		return
	}
	s.seen[path] = struct{}{}
	s.mu.Unlock()

	job, err := s.jobs.CreateJob(ctx, &repository.CreateJobRequest{
		Source:   constants.SourceDrive,
		Filename: filepath.Base(path),
	})
	if err != nil {
		s.logger.Error("ingest.register_failed", "path", path, "error", err)
		return
	}
	if err := s.queue.Enqueue(ctx, async.Job{
		JobID:       job.ID,
		Path:        path,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("ingest.enqueue_failed", "job_id", job.ID, "error", err)
		return
	}
	s.logger.Info("ingest.queued", "job_id", job.ID, "path", path)
}
