package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens/constants"
)

// AuditEntry records one executed pipeline stage for a job.
type AuditEntry struct {
	ID         uuid.UUID             `json:"id"`
	JobID      uuid.UUID             `json:"job_id"`
	Stage      string                `json:"stage"`
	Status     constants.StageStatus `json:"status"`
	DurationMS int64                 `json:"duration_ms"`
	Detail     *string               `json:"detail,omitempty"`
	Error      *string               `json:"error,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}
