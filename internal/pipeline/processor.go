// Package pipeline coordinates the document run: OCR, language detection,
// optional translation, classification, field extraction, risk analysis,
// summarization, and the final transactional save. Every executed stage
// leaves one audit entry.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/entity"
	"github.com/paperlens/paperlens/internal/extract"
	"github.com/paperlens/paperlens/internal/langdetect"
	"github.com/paperlens/paperlens/internal/provider/ocr"
	"github.com/paperlens/paperlens/internal/provider/translate"
	"github.com/paperlens/paperlens/internal/repository"
	"github.com/paperlens/paperlens/internal/risk"
	"github.com/paperlens/paperlens/internal/summary"
	"github.com/paperlens/paperlens/internal/textproc"
)

// OCRProvider yields recognized text for a stored document.
type OCRProvider interface {
	ExtractFile(ctx context.Context, path string) (ocr.Result, error)
}

// Translator converts text into the pipeline's target language.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (translate.Result, error)
}

// DocClassifier assigns a document type with a fused confidence.
type DocClassifier interface {
	Classify(ctx context.Context, text string) (classify.Result, error)
}

// Processor runs the full stage sequence for one job.
type Processor struct {
	logger     *slog.Logger
	ocr        OCRProvider
	translator Translator
	detector   *langdetect.Detector
	classifier DocClassifier
	extractor  *extract.Extractor
	analyzer   *risk.Analyzer
	summarizer *summary.Summarizer
	jobs       repository.JobRepository
	audit      repository.AuditRepository
	opts       Options
	now        func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	ocrProvider OCRProvider,
	translator Translator,
	detector *langdetect.Detector,
	classifier DocClassifier,
	extractor *extract.Extractor,
	analyzer *risk.Analyzer,
	summarizer *summary.Summarizer,
	jobs repository.JobRepository,
	audit repository.AuditRepository,
	opts Options,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger,
		ocr:        ocrProvider,
		translator: translator,
		detector:   detector,
		classifier: classifier,
		extractor:  extractor,
		analyzer:   analyzer,
		summarizer: summarizer,
		jobs:       jobs,
		audit:      audit,
		opts:       opts.normalized(),
		now:        time.Now,
	}
}

// classificationSnapshot is the persisted view of the classification stage.
type classificationSnapshot struct {
	Type                constants.DocumentType `json:"type"`
	Confidence          float64                `json:"confidence"`
	MatchedKeywords     []string               `json:"matched_keywords,omitempty"`
	EmbeddingSimilarity *float64               `json:"embedding_similarity,omitempty"`
	FallbackUsed        bool                   `json:"fallback_used"`
	DetectionFailed     bool                   `json:"detection_failed,omitempty"`
}

// ProcessFile runs every stage for jobID against the stored document at path.
// OCR is the only stage whose failure kills the run; everything downstream
// degrades to a safe default and flags the job for review instead.
func (p *Processor) ProcessFile(ctx context.Context, jobID uuid.UUID, path string) error {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := p.jobs.MarkProcessing(ctx, jobID); err != nil {
		return err
	}
	opts := p.opts
	if job.UserLanguage != "" {
		opts.UserLanguage = job.UserLanguage
	}

	res := &repository.SaveResultRequest{JobID: jobID}
	needsReview := false

	// 1) OCR: the only fatal stage. No text means nothing downstream can run.
	start := p.now()
	ocrRes, ocrErr := p.ocr.ExtractFile(ctx, path)
	text := textproc.NormalizeScanned(ocrRes.Text)
	if ocrErr == nil && strings.TrimSpace(text) == "" {
		ocrErr = fmt.Errorf("ocr returned no text")
	}
	if ocrErr != nil {
		p.recordFailure(ctx, jobID, StageOCR, start, ocrErr)
		return p.failJob(ctx, res, StageOCR, ocrErr)
	}
	res.OCRText = &text
	p.recordSuccess(ctx, jobID, StageOCR, start,
		fmt.Sprintf("chars=%d confidence=%.2f", len(text), ocrRes.Confidence))

	// 2) Language detection: deterministic, never fails.
	start = p.now()
	det := p.detector.Detect(text)
	res.DetectedLanguage = det.Language
	res.LanguageConfidence = det.Confidence
	p.recordSuccess(ctx, jobID, StageLangID, start,
		fmt.Sprintf("language=%s confidence=%.2f", det.Language, det.Confidence))

	// 3) Translation: skipped for target-language documents; a gateway
	// failure falls back to the original text.
	working := text
	if !opts.SkipTranslation && det.Language != opts.TargetLanguage {
		start = p.now()
		tr, trErr := p.translator.Translate(ctx, translate.Request{
			Text:           text,
			SourceLanguage: det.Language,
			TargetLanguage: opts.TargetLanguage,
			Provider:       opts.TranslationProvider,
		})
		if trErr != nil {
			p.logger.Warn("pipeline.translate.degraded", "job_id", jobID, "error", trErr)
			p.recordFailure(ctx, jobID, StageTranslate, start, trErr)
			needsReview = true
		} else {
			working = tr.Text
			res.TranslatedText = &tr.Text
			p.recordSuccess(ctx, jobID, StageTranslate, start,
				fmt.Sprintf("provider=%s confidence=%.2f", tr.Provider, tr.Confidence))
		}
	}

	// 4) Classification: an embedding hard error degrades to the fallback
	// type rather than killing the run.
	start = p.now()
	cls, clsErr := p.classifier.Classify(ctx, working)
	if clsErr != nil {
		p.logger.Warn("pipeline.classify.degraded", "job_id", jobID, "error", clsErr)
		p.recordFailure(ctx, jobID, StageClassify, start, clsErr)
		cls = classify.Result{Type: constants.OtherDocument, Confidence: 0}
		needsReview = true
	} else {
		p.recordSuccess(ctx, jobID, StageClassify, start,
			fmt.Sprintf("type=%s confidence=%.2f fallback=%t", cls.Type, cls.Confidence, cls.FallbackUsed))
	}
	conf := cls.Confidence
	res.DocType = cls.Type
	res.Confidence = &conf
	res.ClassificationJSON, _ = json.Marshal(classificationSnapshot{
		Type:                cls.Type,
		Confidence:          cls.Confidence,
		MatchedKeywords:     cls.MatchedKeywords,
		EmbeddingSimilarity: cls.EmbeddingSimilarity,
		FallbackUsed:        cls.FallbackUsed,
		DetectionFailed:     clsErr != nil,
	})
	if cls.Confidence < opts.ConfidenceThreshold {
		needsReview = true
	}

	// 5) Extraction: rule-driven, absent fields stay zero.
	start = p.now()
	info := p.extractor.Extract(extract.Input{
		Text:          working,
		Words:         ocrRes.Words,
		DocType:       cls.Type,
		MinConfidence: opts.FieldConfidenceFloor,
	})
	res.ExtractedJSON, _ = json.Marshal(info)
	if err := validateExtractedSnapshot(res.ExtractedJSON); err != nil {
		p.logger.Error("pipeline.extract.snapshot_invalid", "job_id", jobID, "error", err)
		p.recordFailure(ctx, jobID, StageExtract, start, err)
		needsReview = true
	} else {
		p.recordSuccess(ctx, jobID, StageExtract, start,
			fmt.Sprintf("fields=%d confidence=%.2f", len(info.FieldConfidences), info.Confidence))
	}

	// 6) Risk analysis and summarization are independent; run them in
	// parallel and audit after the join.
	var (
		analysis    *risk.Analysis
		digest      *summary.Summary
		riskElapsed time.Duration
		sumElapsed  time.Duration
		wg          sync.WaitGroup
	)
	if opts.IncludeRiskAnalysis {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t0 := p.now()
			a := p.analyzer.Analyze(working, cls.Type, info)
			analysis = &a
			riskElapsed = p.now().Sub(t0)
		}()
	}
	if opts.GenerateSummary {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t0 := p.now()
			s := p.summarizer.Summarize(cls.Type, info, p.now())
			digest = &s
			sumElapsed = p.now().Sub(t0)
		}()
	}
	wg.Wait()

	if analysis != nil {
		res.RiskJSON, _ = json.Marshal(analysis)
		p.appendAudit(ctx, jobID, StageRisk, constants.StageCompleted, riskElapsed,
			fmt.Sprintf("score=%.2f recommendation=%s", analysis.RiskScore, analysis.Recommendation), nil)
		if analysis.Recommendation != risk.Proceed {
			needsReview = true
		}
	}
	if digest != nil {
		res.SummaryJSON, _ = json.Marshal(digest)
		p.appendAudit(ctx, jobID, StageSummary, constants.StageCompleted, sumElapsed,
			fmt.Sprintf("urgency=%s key_points=%d", digest.Urgency, len(digest.KeyPoints)), nil)
	}

	// 7) Follow-up actions come from the summary, plus a verification item
	// whenever risk analysis did not clear the document.
	if opts.ExtractActions && digest != nil {
		for _, item := range digest.ActionItems {
			res.Actions = append(res.Actions, entity.Action{
				Type:        item.Type,
				Label:       item.Label,
				Description: item.Description,
				DueDate:     item.DueDate,
				Priority:    item.Priority,
			})
		}
	}
	if opts.ExtractActions && analysis != nil && analysis.Recommendation != risk.Proceed {
		res.Actions = append(res.Actions, entity.Action{
			Type:        constants.ActionVerifyAuthenticity,
			Label:       "Verify this letter is real",
			Description: "This document shows signs of fraud. Confirm it with the agency using official contact channels before acting on it.",
			Priority:    constants.PriorityUrgent,
		})
	}

	res.NeedsReview = needsReview
	if needsReview {
		res.Status = constants.JobStatusNeedsReview
	} else {
		res.Status = constants.JobStatusReady
	}

	// 8) Single transactional save of the job row and its actions.
	start = p.now()
	if _, err := p.jobs.SaveResult(ctx, res); err != nil {
		p.recordFailure(ctx, jobID, StagePersist, start, err)
		return p.failJob(ctx, res, StagePersist, err)
	}
	p.recordSuccess(ctx, jobID, StagePersist, start,
		fmt.Sprintf("status=%s actions=%d", res.Status, len(res.Actions)))

	p.logger.Info("pipeline.job.done",
		"job_id", jobID,
		"doc_type", res.DocType,
		"status", res.Status,
		"needs_review", res.NeedsReview)
	return nil
}

// failJob moves the job to error with whatever partial results exist.
func (p *Processor) failJob(ctx context.Context, res *repository.SaveResultRequest, stage string, cause error) error {
	msg := fmt.Sprintf("%s: %v", stage, cause)
	res.Status = constants.JobStatusError
	res.NeedsReview = false
	res.ErrorMessage = &msg
	if _, err := p.jobs.SaveResult(ctx, res); err != nil {
		p.logger.Error("pipeline.job.fail_save", "job_id", res.JobID, "error", err)
	}
	return newStageError(stage, cause)
}

func (p *Processor) recordSuccess(ctx context.Context, jobID uuid.UUID, stage string, start time.Time, detail string) {
	p.appendAudit(ctx, jobID, stage, constants.StageCompleted, p.now().Sub(start), detail, nil)
}

func (p *Processor) recordFailure(ctx context.Context, jobID uuid.UUID, stage string, start time.Time, cause error) {
	p.appendAudit(ctx, jobID, stage, constants.StageFailed, p.now().Sub(start), "", cause)
}

func (p *Processor) appendAudit(ctx context.Context, jobID uuid.UUID, stage string, status constants.StageStatus, elapsed time.Duration, detail string, cause error) {
	entry := &entity.AuditEntry{
		JobID:      jobID,
		Stage:      stage,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
	}
	if detail != "" {
		entry.Detail = &detail
	}
	if cause != nil {
		msg := cause.Error()
		entry.Error = &msg
	}
	if err := p.audit.Append(ctx, entry); err != nil {
		p.logger.Error("pipeline.audit.append_failed", "job_id", jobID, "stage", stage, "error", err)
	}
}
