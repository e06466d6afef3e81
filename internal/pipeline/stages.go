package pipeline

import "fmt"

// Stage names recorded in the audit trail, in execution order.
const (
	StageOCR       = "ocr"
	StageLangID    = "language_detection"
	StageTranslate = "translation"
	StageClassify  = "classification"
	StageExtract   = "extraction"
	StageRisk      = "risk_analysis"
	StageSummary   = "summarization"
	StagePersist   = "persistence"
)

// StageError marks which stage a job died in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func newStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
