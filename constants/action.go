package constants

// ActionType is the closed set of follow-up action kinds a run can generate.
type ActionType string

const (
	ActionLinkCase            ActionType = "link-case"
	ActionCallService         ActionType = "call-service"
	ActionUploadDocument      ActionType = "upload-document"
	ActionReviewAmount        ActionType = "review-amount"
	ActionScheduleAppointment ActionType = "schedule-appointment"
	ActionPayBill             ActionType = "pay-bill"
	ActionRespondByDeadline   ActionType = "respond-by-deadline"
	ActionVerifyAuthenticity  ActionType = "verify-authenticity"
)

// ActionPriority orders follow-up items for the caller.
type ActionPriority string

const (
	PriorityLow    ActionPriority = "low"
	PriorityMedium ActionPriority = "medium"
	PriorityHigh   ActionPriority = "high"
	PriorityUrgent ActionPriority = "urgent"
)

// ActionStatus is the client-driven lifecycle; the pipeline only ever writes
// "todo".
type ActionStatus string

const (
	ActionTodo    ActionStatus = "todo"
	ActionDone    ActionStatus = "done"
	ActionSkipped ActionStatus = "skipped"
)

// Urgency is the summarizer's overall urgency level for a document.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)
