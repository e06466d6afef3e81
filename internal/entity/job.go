package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens/constants"
)

// Job represents one document processing run for data transfer between layers.
type Job struct {
	ID                 uuid.UUID              `json:"id"`
	Source             constants.JobSource    `json:"source"`
	Filename           string                 `json:"filename"`
	ContentType        string                 `json:"content_type,omitempty"`
	Status             constants.JobStatus    `json:"status"`
	UserLanguage       string                 `json:"user_language,omitempty"`
	DetectedLanguage   string                 `json:"detected_language,omitempty"`
	LanguageConfidence float64                `json:"language_confidence,omitempty"`
	OCRText            *string                `json:"ocr_text,omitempty"`
	TranslatedText     *string                `json:"translated_text,omitempty"`
	DocType            constants.DocumentType `json:"doc_type,omitempty"`
	Confidence         *float64               `json:"confidence,omitempty"`
	NeedsReview        bool                   `json:"needs_review"`
	ClassificationJSON json.RawMessage        `json:"classification,omitempty"`
	ExtractedJSON      json.RawMessage        `json:"extracted,omitempty"`
	RiskJSON           json.RawMessage        `json:"risk,omitempty"`
	SummaryJSON        json.RawMessage        `json:"summary,omitempty"`
	ErrorMessage       *string                `json:"error_message,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
}
