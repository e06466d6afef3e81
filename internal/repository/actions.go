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

type ActionRepository interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Action, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ActionStatus) error
}

type actionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewActionRepository(db *sql.DB, logger *slog.Logger) ActionRepository {
	return &actionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *actionRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*entity.Action, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_id, type, label, description, due_date, priority, status, created_at, updated_at
		 FROM actions WHERE job_id = $1 ORDER BY created_at, id`, jobID.String())
	if err != nil {
		r.logger.Error("failed to list actions", "job_id", jobID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list actions", err)
	}
	defer rows.Close()

	var actions []*entity.Action
	for rows.Next() {
		var (
			a        entity.Action
			id       string
			jid      string
			typ      string
			priority string
			status   string
		)
		err := rows.Scan(&id, &jid, &typ, &a.Label, &a.Description,
			&a.DueDate, &priority, &status, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan action", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if a.JobID, err = uuid.Parse(jid); err != nil {
			return nil, err
		}
		a.Type = constants.ActionType(typ)
		a.Priority = constants.ActionPriority(priority)
		a.Status = constants.ActionStatus(status)
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}

func (r *actionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.ActionStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE actions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id.String())
	if err != nil {
		r.logger.Error("failed to update action status", "action_id", id, "error", err)
		return common.NewAppError("DB_ERROR", "failed to update action status", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", "action not found", common.ErrNotFound)
	}
	return nil
}
