package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
)

var testNow = time.Date(2026, time.January, 18, 9, 0, 0, 0, time.UTC)

const appointmentNoticeText = `U.S. Citizenship and Immigration Services
P.O. Box 82521 Lincoln NE 68501
Receipt Number: IOE0912345678
Dear Maria Garcia,
Your appointment scheduled for January 20, 2026 at the field office.
Please bring this notice with you and a photo ID.`

const scamLetterText = `FINAL WARNING from the Federal Benefits Office.
You will be arrested unless you pay within 24 hours.
Purchase gift cards at any store and read the codes to our agent.
You must call the number below and pay the fine today.`

type fakeJobs struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*entity.Job
	saved     *repository.SaveResultRequest
	marked    []uuid.UUID
	saveErr   error
	saveCalls int
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[uuid.UUID]*entity.Job{}}
}

func (f *fakeJobs) add(job *entity.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
}

func (f *fakeJobs) CreateJob(_ context.Context, req *repository.CreateJobRequest) (*entity.Job, error) {
	job := &entity.Job{
		ID:           uuid.New(),
		Source:       req.Source,
		Filename:     req.Filename,
		Status:       constants.JobStatusReceived,
		UserLanguage: req.UserLanguage,
	}
	f.add(job)
	return job, nil
}

func (f *fakeJobs) GetJob(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

func (f *fakeJobs) ListJobs(context.Context, *constants.JobStatus, int) ([]*entity.Job, error) {
	return nil, nil
}

func (f *fakeJobs) MarkProcessing(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeJobs) ResetForReprocess(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok {
		job.Status = constants.JobStatusReceived
	}
	return nil
}

func (f *fakeJobs) SaveResult(_ context.Context, req *repository.SaveResultRequest) (*entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = req
	return f.jobs[req.JobID], nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (f *fakeAudit) Append(_ context.Context, entry *entity.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) ListByJob(context.Context, uuid.UUID) ([]*entity.AuditEntry, error) {
	return nil, nil
}

func (f *fakeAudit) stages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Stage)
	}
	return out
}

type fakeOCR struct {
	result ocr.Result
	err    error
}

func (f *fakeOCR) ExtractFile(context.Context, string) (ocr.Result, error) {
	return f.result, f.err
}

type fakeTranslator struct {
	result translate.Result
	err    error
	calls  int
}

func (f *fakeTranslator) Translate(_ context.Context, _ translate.Request) (translate.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeClassifier struct {
	result classify.Result
	err    error
}

func (f *fakeClassifier) Classify(context.Context, string) (classify.Result, error) {
	return f.result, f.err
}

type fixture struct {
	proc       *Processor
	jobs       *fakeJobs
	audit      *fakeAudit
	ocr        *fakeOCR
	translator *fakeTranslator
	classifier *fakeClassifier
	jobID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		jobs:       newFakeJobs(),
		audit:      &fakeAudit{},
		ocr:        &fakeOCR{},
		translator: &fakeTranslator{},
		classifier: &fakeClassifier{},
	}
	f.jobID = uuid.New()
	f.jobs.add(&entity.Job{ID: f.jobID, Status: constants.JobStatusReceived, Filename: "scan.pdf"})

	f.proc = NewProcessor(
		nil,
		f.ocr,
		f.translator,
		langdetect.NewDetector(constants.LangEnglish),
		f.classifier,
		extract.NewExtractor(nil),
		risk.NewAnalyzer(nil),
		summary.NewSummarizer(nil),
		f.jobs,
		f.audit,
		DefaultOptions(),
	)
	f.proc.now = func() time.Time { return testNow }
	return f
}

func TestProcessFileGenuineAppointmentNotice(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: appointmentNoticeText, Confidence: 0.94}
	f.classifier.result = classify.Result{Type: constants.USCISNotice, Confidence: 0.9}

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scan.pdf"))

	saved := f.jobs.saved
	require.NotNil(t, saved)
	assert.Equal(t, constants.JobStatusReady, saved.Status)
	assert.False(t, saved.NeedsReview)
	assert.Equal(t, constants.USCISNotice, saved.DocType)
	assert.Equal(t, constants.LangEnglish, saved.DetectedLanguage)
	assert.Nil(t, saved.TranslatedText)
	assert.Nil(t, saved.ErrorMessage)
	assert.Equal(t, 0, f.translator.calls, "same-language documents skip translation")
	assert.Equal(t, []uuid.UUID{f.jobID}, f.jobs.marked)

	var digest summary.Summary
	require.NoError(t, json.Unmarshal(saved.SummaryJSON, &digest))
	assert.Equal(t, constants.UrgencyCritical, digest.Urgency, "appointment two days out is critical")

	var analysis risk.Analysis
	require.NoError(t, json.Unmarshal(saved.RiskJSON, &analysis))
	assert.Equal(t, risk.Proceed, analysis.Recommendation)

	types := actionTypes(saved.Actions)
	assert.Contains(t, types, constants.ActionScheduleAppointment)
	assert.NotContains(t, types, constants.ActionVerifyAuthenticity)

	assert.Equal(t, []string{
		StageOCR, StageLangID, StageClassify, StageExtract,
		StageRisk, StageSummary, StagePersist,
	}, f.audit.stages())
}

func TestProcessFileScamLetterNeedsReview(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: scamLetterText, Confidence: 0.9}
	f.classifier.result = classify.Result{Type: constants.OtherDocument, Confidence: 0.65}

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scam.jpg"))

	saved := f.jobs.saved
	require.NotNil(t, saved)
	assert.Equal(t, constants.JobStatusNeedsReview, saved.Status)
	assert.True(t, saved.NeedsReview)

	var analysis risk.Analysis
	require.NoError(t, json.Unmarshal(saved.RiskJSON, &analysis))
	assert.Equal(t, risk.Block, analysis.Recommendation)
	assert.True(t, analysis.Suspicious)

	types := actionTypes(saved.Actions)
	require.Contains(t, types, constants.ActionVerifyAuthenticity)
	for _, a := range saved.Actions {
		if a.Type == constants.ActionVerifyAuthenticity {
			assert.Equal(t, constants.PriorityUrgent, a.Priority)
		}
	}
}

func TestProcessFileEmptyOCRFailsJob(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: "   \n  "}

	err := f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/blank.png")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageOCR, stageErr.Stage)

	saved := f.jobs.saved
	require.NotNil(t, saved)
	assert.Equal(t, constants.JobStatusError, saved.Status)
	assert.False(t, saved.NeedsReview)
	require.NotNil(t, saved.ErrorMessage)
	assert.Contains(t, *saved.ErrorMessage, "ocr")

	// only the failed stage appears in the trail
	assert.Equal(t, []string{StageOCR}, f.audit.stages())
	require.NotNil(t, f.audit.entries[0].Error)
}

func TestProcessFileReprocessingIsDeterministic(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: appointmentNoticeText, Confidence: 0.94}
	f.classifier.result = classify.Result{Type: constants.USCISNotice, Confidence: 0.9}

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scan.pdf"))
	first := f.jobs.saved
	require.NotNil(t, first)

	require.NoError(t, f.jobs.ResetForReprocess(context.Background(), f.jobID))
	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scan.pdf"))
	second := f.jobs.saved
	require.NotNil(t, second)
	require.NotSame(t, first, second)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.DocType, second.DocType)
	assert.Equal(t, first.NeedsReview, second.NeedsReview)
	assert.Equal(t, first.DetectedLanguage, second.DetectedLanguage)
	assert.JSONEq(t, string(first.ClassificationJSON), string(second.ClassificationJSON))
	assert.JSONEq(t, string(first.ExtractedJSON), string(second.ExtractedJSON))
	assert.JSONEq(t, string(first.RiskJSON), string(second.RiskJSON))
	assert.JSONEq(t, string(first.SummaryJSON), string(second.SummaryJSON))

	require.Equal(t, len(first.Actions), len(second.Actions))
	for i := range first.Actions {
		assert.Equal(t, first.Actions[i].Type, second.Actions[i].Type)
		assert.Equal(t, first.Actions[i].Label, second.Actions[i].Label)
		assert.Equal(t, first.Actions[i].Priority, second.Actions[i].Priority)
	}
}

func TestProcessFileLowClassificationConfidenceNeedsReview(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: appointmentNoticeText, Confidence: 0.9}
	f.classifier.result = classify.Result{Type: constants.USCISNotice, Confidence: 0.4}

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scan.pdf"))

	saved := f.jobs.saved
	require.NotNil(t, saved)
	assert.Equal(t, constants.JobStatusNeedsReview, saved.Status)
	assert.True(t, saved.NeedsReview)
}

func TestProcessFileClassifierErrorDegrades(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: appointmentNoticeText, Confidence: 0.9}
	f.classifier.err = fmt.Errorf("label embeddings stale")

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scan.pdf"))

	saved := f.jobs.saved
	require.NotNil(t, saved)
	assert.Equal(t, constants.JobStatusNeedsReview, saved.Status)
	assert.Equal(t, constants.OtherDocument, saved.DocType)

	var snap classificationSnapshot
	require.NoError(t, json.Unmarshal(saved.ClassificationJSON, &snap))
	assert.True(t, snap.DetectionFailed)
	assert.Zero(t, snap.Confidence)

	assert.Contains(t, f.audit.stages(), StageClassify)
}

func TestProcessFileTranslationFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: "Por favor pague su factura de la luz. El total es para este mes y usted debe pagar pronto.", Confidence: 0.9}
	f.translator.err = fmt.Errorf("gateway timeout")
	f.classifier.result = classify.Result{Type: constants.UtilityBill, Confidence: 0.9}

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/factura.pdf"))

	saved := f.jobs.saved
	require.NotNil(t, saved)
	assert.Equal(t, 1, f.translator.calls)
	assert.Equal(t, constants.LangSpanish, saved.DetectedLanguage)
	assert.Nil(t, saved.TranslatedText, "failed translation keeps the original text")
	assert.Equal(t, constants.JobStatusNeedsReview, saved.Status)
	assert.True(t, saved.NeedsReview)

	stages := f.audit.stages()
	assert.Contains(t, stages, StageTranslate)
	for _, e := range f.audit.entries {
		if e.Stage == StageTranslate {
			assert.Equal(t, constants.StageFailed, e.Status)
		}
	}
}

func TestProcessFileTranslationSuccessUsesTranslatedText(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: "Por favor pague su factura de la luz. El total es para este mes y usted debe pagar pronto.", Confidence: 0.9}
	f.translator.result = translate.Result{
		Text:       "Please pay your electric bill. Amount Due: $142.50 by 02/15/2026.",
		Confidence: 0.9,
		Provider:   "nllb",
	}
	f.classifier.result = classify.Result{Type: constants.UtilityBill, Confidence: 0.9}

	require.NoError(t, f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/factura.pdf"))

	saved := f.jobs.saved
	require.NotNil(t, saved)
	require.NotNil(t, saved.TranslatedText)
	assert.Contains(t, *saved.TranslatedText, "electric bill")
	assert.Equal(t, constants.JobStatusReady, saved.Status)

	// extraction ran against the translated text
	var info extract.ExtractedInfo
	require.NoError(t, json.Unmarshal(saved.ExtractedJSON, &info))
	require.NotNil(t, info.Amounts.TotalDue)
	assert.InDelta(t, 142.50, *info.Amounts.TotalDue, 1e-9)
}

func TestProcessFilePersistFailure(t *testing.T) {
	f := newFixture(t)
	f.ocr.result = ocr.Result{Text: appointmentNoticeText, Confidence: 0.9}
	f.classifier.result = classify.Result{Type: constants.USCISNotice, Confidence: 0.9}
	f.jobs.saveErr = fmt.Errorf("disk full")

	err := f.proc.ProcessFile(context.Background(), f.jobID, "/tmp/scan.pdf")
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePersist, stageErr.Stage)
	// result save and the error-state save both hit the repository
	assert.Equal(t, 2, f.jobs.saveCalls)
}

func actionTypes(actions []entity.Action) []constants.ActionType {
	out := make([]constants.ActionType, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Type)
	}
	return out
}
