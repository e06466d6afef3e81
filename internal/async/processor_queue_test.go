package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/entity"
	"github.com/paperlens/paperlens/internal/pipeline"
	"github.com/paperlens/paperlens/internal/repository"
)

// stalledJobs pins the worker inside its first lookup until released, so the
// queue buffer can be filled deterministically.
type stalledJobs struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	unblock sync.Once
}

func (s *stalledJobs) Release() {
	s.unblock.Do(func() { close(s.release) })
}

func (s *stalledJobs) GetJob(ctx context.Context, _ uuid.UUID) (*entity.Job, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil, errors.New("job not found")
}

func (s *stalledJobs) CreateJob(context.Context, *repository.CreateJobRequest) (*entity.Job, error) {
	return nil, nil
}

func (s *stalledJobs) ListJobs(context.Context, *constants.JobStatus, int) ([]*entity.Job, error) {
	return nil, nil
}

func (s *stalledJobs) MarkProcessing(context.Context, uuid.UUID) error { return nil }

func (s *stalledJobs) ResetForReprocess(context.Context, uuid.UUID) error { return nil }

func (s *stalledJobs) SaveResult(context.Context, *repository.SaveResultRequest) (*entity.Job, error) {
	return nil, nil
}

func TestShutdownNotBlockedBySaturatedQueue(t *testing.T) {
	jobs := &stalledJobs{started: make(chan struct{}), release: make(chan struct{})}
	proc := pipeline.NewProcessor(nil, nil, nil, nil, nil, nil, nil, nil, jobs, nil, pipeline.Options{})
	q := NewProcessorQueue(proc, slog.Default(), WithWorkers(1), WithQueueSize(1))
	t.Cleanup(jobs.Release)

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{JobID: uuid.New()}))
	select {
	case <-jobs.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first job")
	}

	// buffer of one fills, the third enqueue blocks in the backpressure send
	require.NoError(t, q.Enqueue(ctx, Job{JobID: uuid.New()}))
	blocked := make(chan struct{})
	go func() {
		defer close(blocked)
		_ = q.Enqueue(ctx, Job{JobID: uuid.New()})
	}()
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	q.Shutdown(shutdownCtx)
	assert.Less(t, time.Since(start), 2*time.Second, "shutdown must honor its context while a sender is blocked")

	// once the worker is released the blocked sender drains out too
	jobs.Release()
	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked enqueue never completed after drain")
	}
}
