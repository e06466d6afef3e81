package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/common"
)

// LabelRepository persists classifier label definitions. It implements
// classify.LabelSource so the label cache can read straight from the table.
type LabelRepository interface {
	classify.LabelSource
	Upsert(ctx context.Context, label classify.Label) error
	Seed(ctx context.Context, labels []classify.Label) error
}

type labelRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLabelRepository(db *sql.DB, logger *slog.Logger) LabelRepository {
	return &labelRepository{
		db:     db,
		logger: logger,
	}
}

func (r *labelRepository) ListLabels(ctx context.Context) ([]classify.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT doc_type, keywords_json, confidence_threshold FROM labels ORDER BY doc_type`)
	if err != nil {
		r.logger.Error("failed to list labels", "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list labels", err)
	}
	defer rows.Close()

	var labels []classify.Label
	for rows.Next() {
		var (
			docType  string
			keywords string
			label    classify.Label
		)
		if err := rows.Scan(&docType, &keywords, &label.ConfidenceThreshold); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan label", err)
		}
		label.Type = constants.DocumentType(docType)
		if err := json.Unmarshal([]byte(keywords), &label.Keywords); err != nil {
			return nil, common.NewAppError("DB_ERROR", "corrupt keywords for "+docType, err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (r *labelRepository) Upsert(ctx context.Context, label classify.Label) error {
	keywords, err := json.Marshal(label.Keywords)
	if err != nil {
		return common.NewAppError("INVALID_INPUT", "failed to encode keywords", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO labels (doc_type, keywords_json, confidence_threshold, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (doc_type) DO UPDATE SET
			keywords_json = excluded.keywords_json,
			confidence_threshold = excluded.confidence_threshold,
			updated_at = excluded.updated_at`,
		string(label.Type), string(keywords), label.ConfidenceThreshold, time.Now().UTC())
	if err != nil {
		r.logger.Error("failed to upsert label", "doc_type", label.Type, "error", err)
		return common.NewAppError("DB_ERROR", "failed to upsert label", err)
	}
	return nil
}

// Seed inserts the built-in labels for any doc type not already present.
func (r *labelRepository) Seed(ctx context.Context, labels []classify.Label) error {
	for _, label := range labels {
		keywords, err := json.Marshal(label.Keywords)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO labels (doc_type, keywords_json, confidence_threshold, updated_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (doc_type) DO NOTHING`,
			string(label.Type), string(keywords), label.ConfidenceThreshold, time.Now().UTC())
		if err != nil {
			r.logger.Error("failed to seed label", "doc_type", label.Type, "error", err)
			return common.NewAppError("DB_ERROR", "failed to seed labels", err)
		}
	}
	r.logger.Info("label seed complete", "count", len(labels))
	return nil
}
