// handlers_jobs.go - Document upload and job inspection handlers
package server

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/async"
	"github.com/paperlens/paperlens/internal/common"
	"github.com/paperlens/paperlens/internal/entity"
	"github.com/paperlens/paperlens/internal/repository"
)

// JobHandler serves uploads and job lookups.
type JobHandler struct {
	jobs      repository.JobRepository
	actions   repository.ActionRepository
	audit     repository.AuditRepository
	queue     async.Queue
	uploadDir string
	logger    *slog.Logger
}

func NewJobHandler(
	jobs repository.JobRepository,
	actions repository.ActionRepository,
	audit repository.AuditRepository,
	queue async.Queue,
	uploadDir string,
	logger *slog.Logger,
) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{
		jobs:      jobs,
		actions:   actions,
		audit:     audit,
		queue:     queue,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

type jobResponse struct {
	Job     *entity.Job          `json:"job"`
	Actions []*entity.Action     `json:"actions,omitempty"`
	Audit   []*entity.AuditEntry `json:"audit,omitempty"`
}

// HandleUpload accepts a document (multipart/form-data), registers a job, and
// queues it for processing.
func (h *JobHandler) HandleUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(file.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return NewBadRequestError("unsupported file type: "+ext, nil)
	}

	source := constants.JobSource(c.FormValue("source"))
	if source == "" {
		source = constants.SourceUpload
	}
	userLanguage := c.FormValue("user_language")

	job, err := h.jobs.CreateJob(c.Request().Context(), &repository.CreateJobRequest{
		Source:       source,
		Filename:     file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		UserLanguage: userLanguage,
	})
	if err != nil {
		return NewInternalError("failed to register job", err)
	}

	path, err := h.saveUpload(file, job.ID, ext)
	if err != nil {
		return NewInternalError("failed to store file", err)
	}

	if err := h.queue.Enqueue(c.Request().Context(), async.Job{
		JobID:       job.ID,
		Path:        path,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		return NewInternalError("failed to queue job", err)
	}

	h.logger.Info("server.upload.accepted", "job_id", job.ID, "filename", file.Filename)
	return c.JSON(http.StatusAccepted, map[string]any{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// HandleGetJob returns one job with its actions and audit trail.
func (h *JobHandler) HandleGetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError("id")
	}

	ctx := c.Request().Context()
	job, err := h.jobs.GetJob(ctx, id)
	if err != nil {
		return fromRepoError(err, "job", id.String())
	}
	actions, err := h.actions.ListByJob(ctx, id)
	if err != nil {
		return NewInternalError("failed to list actions", err)
	}
	audit, err := h.audit.ListByJob(ctx, id)
	if err != nil {
		return NewInternalError("failed to list audit entries", err)
	}

	return c.JSON(http.StatusOK, jobResponse{Job: job, Actions: actions, Audit: audit})
}

// HandleListJobs returns recent jobs, optionally filtered by status.
func (h *JobHandler) HandleListJobs(c echo.Context) error {
	var status *constants.JobStatus
	if s := c.QueryParam("status"); s != "" {
		st := constants.JobStatus(s)
		status = &st
	}

	jobs, err := h.jobs.ListJobs(c.Request().Context(), status, 100)
	if err != nil {
		return NewInternalError("failed to list jobs", err)
	}
	return c.JSON(http.StatusOK, jobs)
}

// HandleReprocessJob resets a finished job and queues a full re-run from OCR.
// Jobs still in flight are refused; the stored upload must still exist.
func (h *JobHandler) HandleReprocessJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError("id")
	}

	ctx := c.Request().Context()
	job, err := h.jobs.GetJob(ctx, id)
	if err != nil {
		return fromRepoError(err, "job", id.String())
	}

	ext := constants.NormalizeExt(filepath.Ext(job.Filename))
	path := filepath.Join(h.uploadDir, id.String()+"."+ext)
	if _, err := os.Stat(path); err != nil {
		return NewNotFoundError("stored document", id.String())
	}

	if err := h.jobs.ResetForReprocess(ctx, id); err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return NewBadRequestError("job is still in flight", err)
		}
		return fromRepoError(err, "job", id.String())
	}

	if err := h.queue.Enqueue(ctx, async.Job{
		JobID:       id,
		Path:        path,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		return NewInternalError("failed to queue job", err)
	}

	h.logger.Info("server.reprocess.accepted", "job_id", id, "previous_status", job.Status)
	return c.JSON(http.StatusAccepted, map[string]any{
		"job_id": id,
		"status": constants.JobStatusReceived,
	})
}

type actionStatusRequest struct {
	Status constants.ActionStatus `json:"status"`
}

// HandleUpdateAction moves an action through its todo/done/skipped lifecycle.
func (h *JobHandler) HandleUpdateAction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError("id")
	}

	var req actionStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	switch req.Status {
	case constants.ActionTodo, constants.ActionDone, constants.ActionSkipped:
	default:
		return NewValidationError("status")
	}

	if err := h.actions.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return fromRepoError(err, "action", id.String())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *JobHandler) saveUpload(file *multipart.FileHeader, jobID uuid.UUID, ext string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(h.uploadDir, jobID.String()+"."+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
