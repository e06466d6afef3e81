package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/common"
	"github.com/paperlens/paperlens/internal/entity"
)

// CreateJobRequest wraps parameters for registering a new document run.
type CreateJobRequest struct {
	Source       constants.JobSource
	Filename     string
	ContentType  string
	UserLanguage string
}

// SaveResultRequest carries everything the pipeline produced for one job.
// The job row and its actions are written in a single transaction.
type SaveResultRequest struct {
	JobID              uuid.UUID
	Status             constants.JobStatus
	DetectedLanguage   string
	LanguageConfidence float64
	OCRText            *string
	TranslatedText     *string
	DocType            constants.DocumentType
	Confidence         *float64
	NeedsReview        bool
	ClassificationJSON json.RawMessage
	ExtractedJSON      json.RawMessage
	RiskJSON           json.RawMessage
	SummaryJSON        json.RawMessage
	ErrorMessage       *string
	Actions            []entity.Action
}

type JobRepository interface {
	CreateJob(ctx context.Context, req *CreateJobRequest) (*entity.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	ListJobs(ctx context.Context, status *constants.JobStatus, limit int) ([]*entity.Job, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	ResetForReprocess(ctx context.Context, id uuid.UUID) error
	SaveResult(ctx context.Context, req *SaveResultRequest) (*entity.Job, error)
}

type jobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewJobRepository(db *sql.DB, logger *slog.Logger) JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger,
	}
}

const jobColumns = `id, source, filename, content_type, status, user_language,
	detected_language, language_confidence, ocr_text, translated_text,
	doc_type, confidence, needs_review, classification_json, extracted_json,
	risk_json, summary_json, error_message, created_at, updated_at, completed_at`

func (r *jobRepository) CreateJob(ctx context.Context, req *CreateJobRequest) (*entity.Job, error) {
	now := time.Now().UTC()
	job := &entity.Job{
		ID:           uuid.New(),
		Source:       req.Source,
		Filename:     req.Filename,
		ContentType:  req.ContentType,
		Status:       constants.JobStatusReceived,
		UserLanguage: req.UserLanguage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, source, filename, content_type, status, user_language, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID.String(), string(job.Source), job.Filename, job.ContentType,
		string(job.Status), job.UserLanguage, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create job", "filename", req.Filename, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to create job", err)
	}
	return job, nil
}

func (r *jobRepository) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "job not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get job", "job_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to get job", err)
	}
	return job, nil
}

func (r *jobRepository) ListJobs(ctx context.Context, status *constants.JobStatus, limit int) ([]*entity.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list jobs", "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list jobs", err)
	}
	defer rows.Close()

	var jobs []*entity.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan job", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(constants.JobStatusProcessing), time.Now().UTC(), id.String(), string(constants.JobStatusReceived))
	if err != nil {
		r.logger.Error("failed to mark job processing", "job_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "failed to mark job processing", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return common.NewAppError("INVALID_STATE", "job is not in received state", common.ErrInvalidInput)
	}
	return nil
}

// ResetForReprocess returns a finished job to the received state so the next
// run starts clean from OCR. Previous actions are dropped; audit entries stay
// as the history of earlier runs. Jobs still in flight are refused.
func (r *jobRepository) ResetForReprocess(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = $1`, id.String()).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewAppError("NOT_FOUND", "job not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to read job status", "job_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "failed to read job status", err)
	}
	if !constants.JobStatus(status).CanTransition(constants.JobStatusReceived) {
		return common.NewAppError("INVALID_STATE", "job is still in flight", common.ErrInvalidInput)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE job_id = $1`, id.String()); err != nil {
		r.logger.Error("failed to clear actions", "job_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "failed to clear actions", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE jobs SET
			status = $1, detected_language = '', language_confidence = 0,
			ocr_text = NULL, translated_text = NULL, doc_type = '',
			confidence = NULL, needs_review = $2, classification_json = NULL,
			extracted_json = NULL, risk_json = NULL, summary_json = NULL,
			error_message = NULL, updated_at = $3, completed_at = NULL
		 WHERE id = $4`,
		string(constants.JobStatusReceived), false, time.Now().UTC(), id.String())
	if err != nil {
		r.logger.Error("failed to reset job", "job_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "failed to reset job", err)
	}

	if err := tx.Commit(); err != nil {
		return common.NewAppError("DB_ERROR", "failed to commit job reset", err)
	}
	r.logger.Info("job reset for reprocessing", "job_id", id, "previous_status", status)
	return nil
}

// SaveResult writes the finished job and its actions atomically. A failure
// anywhere rolls back the whole write so a job never lands half-saved.
func (r *jobRepository) SaveResult(ctx context.Context, req *SaveResultRequest) (*entity.Job, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	var completedAt *time.Time
	if req.Status == constants.JobStatusReady || req.Status == constants.JobStatusNeedsReview || req.Status == constants.JobStatusError {
		completedAt = &now
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE jobs SET
			status = $1, detected_language = $2, language_confidence = $3,
			ocr_text = $4, translated_text = $5, doc_type = $6, confidence = $7,
			needs_review = $8, classification_json = $9, extracted_json = $10,
			risk_json = $11, summary_json = $12, error_message = $13,
			updated_at = $14, completed_at = $15
		 WHERE id = $16`,
		string(req.Status), req.DetectedLanguage, req.LanguageConfidence,
		req.OCRText, req.TranslatedText, string(req.DocType), req.Confidence,
		req.NeedsReview, rawOrNil(req.ClassificationJSON), rawOrNil(req.ExtractedJSON),
		rawOrNil(req.RiskJSON), rawOrNil(req.SummaryJSON), req.ErrorMessage,
		now, completedAt, req.JobID.String())
	if err != nil {
		r.logger.Error("failed to save job result", "job_id", req.JobID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to save job result", err)
	}

	for i := range req.Actions {
		a := &req.Actions[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.JobID = req.JobID
		if a.Status == "" {
			a.Status = constants.ActionTodo
		}
		a.CreatedAt = now
		a.UpdatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO actions (id, job_id, type, label, description, due_date, priority, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID.String(), a.JobID.String(), string(a.Type), a.Label, a.Description,
			a.DueDate, string(a.Priority), string(a.Status), a.CreatedAt, a.UpdatedAt)
		if err != nil {
			r.logger.Error("failed to save action", "job_id", req.JobID, "type", a.Type, "error", err)
			return nil, common.NewAppError("DB_ERROR", "failed to save action", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to commit job result", err)
	}
	return r.GetJob(ctx, req.JobID)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*entity.Job, error) {
	var (
		job       entity.Job
		id        string
		source    string
		status    string
		docType   string
		classJSON sql.NullString
		extJSON   sql.NullString
		riskJSON  sql.NullString
		sumJSON   sql.NullString
	)
	err := s.Scan(&id, &source, &job.Filename, &job.ContentType, &status,
		&job.UserLanguage, &job.DetectedLanguage, &job.LanguageConfidence,
		&job.OCRText, &job.TranslatedText, &docType, &job.Confidence,
		&job.NeedsReview, &classJSON, &extJSON, &riskJSON, &sumJSON,
		&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	job.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	job.Source = constants.JobSource(source)
	job.Status = constants.JobStatus(status)
	job.DocType = constants.DocumentType(docType)
	job.ClassificationJSON = rawFromNull(classJSON)
	job.ExtractedJSON = rawFromNull(extJSON)
	job.RiskJSON = rawFromNull(riskJSON)
	job.SummaryJSON = rawFromNull(sumJSON)
	return &job, nil
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rawFromNull(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}

