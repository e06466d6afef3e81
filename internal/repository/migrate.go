package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is portable DDL: plain type names that postgres takes literally
// and sqlite maps through type affinity.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id                  TEXT PRIMARY KEY,
		source              TEXT NOT NULL,
		filename            TEXT NOT NULL,
		content_type        TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL,
		user_language       TEXT NOT NULL DEFAULT '',
		detected_language   TEXT NOT NULL DEFAULT '',
		language_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		ocr_text            TEXT,
		translated_text     TEXT,
		doc_type            TEXT NOT NULL DEFAULT '',
		confidence          DOUBLE PRECISION,
		needs_review        BOOLEAN NOT NULL DEFAULT FALSE,
		classification_json TEXT,
		extracted_json      TEXT,
		risk_json           TEXT,
		summary_json        TEXT,
		error_message       TEXT,
		created_at          TIMESTAMP NOT NULL,
		updated_at          TIMESTAMP NOT NULL,
		completed_at        TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at)`,

	`CREATE TABLE IF NOT EXISTS actions (
		id          TEXT PRIMARY KEY,
		job_id      TEXT NOT NULL REFERENCES jobs (id),
		type        TEXT NOT NULL,
		label       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date    TIMESTAMP,
		priority    TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_job_id ON actions (job_id)`,

	`CREATE TABLE IF NOT EXISTS audit_entries (
		id          TEXT PRIMARY KEY,
		job_id      TEXT NOT NULL REFERENCES jobs (id),
		stage       TEXT NOT NULL,
		status      TEXT NOT NULL,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		detail      TEXT,
		error       TEXT,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entries_job_id ON audit_entries (job_id)`,

	`CREATE TABLE IF NOT EXISTS labels (
		doc_type             TEXT PRIMARY KEY,
		keywords_json        TEXT NOT NULL,
		confidence_threshold DOUBLE PRECISION NOT NULL,
		updated_at           TIMESTAMP NOT NULL
	)`,
}

// Migrate applies the schema. Statements are idempotent so this is safe to
// run on every boot.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	logger.Info("applying database migrations", "statements", len(migrations))
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Error("migration failed", "statement", i, "error", err)
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info("database migrations applied")
	return nil
}
