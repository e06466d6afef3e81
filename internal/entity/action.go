package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens/constants"
)

// Action is a follow-up item generated for a processed job.
type Action struct {
	ID          uuid.UUID                `json:"id"`
	JobID       uuid.UUID                `json:"job_id"`
	Type        constants.ActionType     `json:"type"`
	Label       string                   `json:"label"`
	Description string                   `json:"description,omitempty"`
	DueDate     *time.Time               `json:"due_date,omitempty"`
	Priority    constants.ActionPriority `json:"priority"`
	Status      constants.ActionStatus   `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}
