package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/common"
	"github.com/paperlens/paperlens/internal/entity"
)

// AuditRepository records executed pipeline stages. Entries are written as
// each stage finishes, outside the final result transaction, so a crashed run
// still leaves its trail.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.AuditEntry, error)
}

type auditRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAuditRepository(db *sql.DB, logger *slog.Logger) AuditRepository {
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, job_id, stage, status, duration_ms, detail, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID.String(), entry.JobID.String(), entry.Stage, string(entry.Status),
		entry.DurationMS, entry.Detail, entry.Error, entry.CreatedAt)
	if err != nil {
		r.logger.Error("failed to append audit entry", "job_id", entry.JobID, "stage", entry.Stage, "error", err)
		return common.NewAppError("DB_ERROR", "failed to append audit entry", err)
	}
	return nil
}

func (r *auditRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_id, stage, status, duration_ms, detail, error, created_at
		 FROM audit_entries WHERE job_id = $1 ORDER BY created_at, id`, jobID.String())
	if err != nil {
		r.logger.Error("failed to list audit entries", "job_id", jobID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list audit entries", err)
	}
	defer rows.Close()

	var entries []*entity.AuditEntry
	for rows.Next() {
		var (
			e      entity.AuditEntry
			id     string
			jid    string
			status string
		)
		err := rows.Scan(&id, &jid, &e.Stage, &status, &e.DurationMS, &e.Detail, &e.Error, &e.CreatedAt)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan audit entry", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if e.JobID, err = uuid.Parse(jid); err != nil {
			return nil, err
		}
		e.Status = constants.StageStatus(status)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
