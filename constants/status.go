package constants

// JobStatus is the canonical lifecycle status for rows in jobs.
type JobStatus string

// Stable values (store these exact strings in DB). Transitions only move
// forward: received -> processing -> {ready|needs_review|error}.
const (
	JobStatusReceived    JobStatus = "received"
	JobStatusProcessing  JobStatus = "processing"
	JobStatusReady       JobStatus = "ready"
	JobStatusNeedsReview JobStatus = "needs_review"
	JobStatusError       JobStatus = "error"
)

// CanTransition reports whether moving from s to next is a legal step.
// Terminal states only re-enter the pipeline through the received state,
// the explicit reprocessing path.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusReceived:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusReady || next == JobStatusNeedsReview || next == JobStatusError
	case JobStatusReady, JobStatusNeedsReview, JobStatusError:
		return next == JobStatusReceived
	default:
		return false
	}
}

// StageStatus is the per-stage outcome recorded in audit_entries.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)
