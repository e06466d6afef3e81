package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/common"
	"github.com/paperlens/paperlens/internal/entity"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "test.db")}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(ctx, db, slog.Default()))
	return db
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())

	created, err := jobs.CreateJob(ctx, &CreateJobRequest{
		Source:       constants.SourceUpload,
		Filename:     "notice.pdf",
		ContentType:  "application/pdf",
		UserLanguage: "es",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, constants.JobStatusReceived, created.Status)

	fetched, err := jobs.GetJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "notice.pdf", fetched.Filename)
	assert.Equal(t, "es", fetched.UserLanguage)
	assert.Nil(t, fetched.OCRText)
	assert.Nil(t, fetched.CompletedAt)

	require.NoError(t, jobs.MarkProcessing(ctx, created.ID))

	// a second transition attempt must be rejected
	err = jobs.MarkProcessing(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGetJobNotFound(t *testing.T) {
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())

	_, err := jobs.GetJob(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveResultWritesJobAndActions(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())
	actions := NewActionRepository(db, slog.Default())

	created, err := jobs.CreateJob(ctx, &CreateJobRequest{Source: constants.SourceUpload, Filename: "bill.jpg"})
	require.NoError(t, err)
	require.NoError(t, jobs.MarkProcessing(ctx, created.ID))

	ocrText := "Amount Due: $142.50"
	conf := 0.87
	due := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
	saved, err := jobs.SaveResult(ctx, &SaveResultRequest{
		JobID:              created.ID,
		Status:             constants.JobStatusReady,
		DetectedLanguage:   "en",
		LanguageConfidence: 0.8,
		OCRText:            &ocrText,
		DocType:            constants.UtilityBill,
		Confidence:         &conf,
		ClassificationJSON: json.RawMessage(`{"type":"utility_bill","confidence":0.87}`),
		ExtractedJSON:      json.RawMessage(`{"confidence":0.9}`),
		Actions: []entity.Action{
			{Type: constants.ActionPayBill, Label: "Pay the amount due", DueDate: &due, Priority: constants.PriorityMedium},
			{Type: constants.ActionReviewAmount, Label: "Check the amount", Priority: constants.PriorityLow},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, constants.JobStatusReady, saved.Status)
	assert.Equal(t, constants.UtilityBill, saved.DocType)
	assert.Equal(t, "en", saved.DetectedLanguage)
	require.NotNil(t, saved.OCRText)
	assert.Equal(t, ocrText, *saved.OCRText)
	require.NotNil(t, saved.Confidence)
	assert.InDelta(t, 0.87, *saved.Confidence, 1e-9)
	assert.False(t, saved.NeedsReview)
	assert.JSONEq(t, `{"type":"utility_bill","confidence":0.87}`, string(saved.ClassificationJSON))
	require.NotNil(t, saved.CompletedAt)

	stored, err := actions.ListByJob(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, a := range stored {
		assert.Equal(t, created.ID, a.JobID)
		assert.Equal(t, constants.ActionTodo, a.Status)
	}
	var pay *entity.Action
	for _, a := range stored {
		if a.Type == constants.ActionPayBill {
			pay = a
		}
	}
	require.NotNil(t, pay)
	require.NotNil(t, pay.DueDate)
	assert.WithinDuration(t, due, *pay.DueDate, time.Second)

	require.NoError(t, actions.UpdateStatus(ctx, pay.ID, constants.ActionDone))
	stored, err = actions.ListByJob(ctx, created.ID)
	require.NoError(t, err)
	for _, a := range stored {
		if a.ID == pay.ID {
			assert.Equal(t, constants.ActionDone, a.Status)
		}
	}

	err = actions.UpdateStatus(ctx, uuid.New(), constants.ActionDone)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveResultErrorState(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())

	created, err := jobs.CreateJob(ctx, &CreateJobRequest{Source: constants.SourceDrive, Filename: "blank.png"})
	require.NoError(t, err)

	msg := "ocr: ocr returned no text"
	saved, err := jobs.SaveResult(ctx, &SaveResultRequest{
		JobID:        created.ID,
		Status:       constants.JobStatusError,
		ErrorMessage: &msg,
	})
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusError, saved.Status)
	require.NotNil(t, saved.ErrorMessage)
	assert.Equal(t, msg, *saved.ErrorMessage)
	require.NotNil(t, saved.CompletedAt)
}

func TestResetForReprocess(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())
	actions := NewActionRepository(db, slog.Default())

	created, err := jobs.CreateJob(ctx, &CreateJobRequest{Source: constants.SourceUpload, Filename: "bill.jpg"})
	require.NoError(t, err)

	// a job that has not finished cannot be reset
	err = jobs.ResetForReprocess(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	require.NoError(t, jobs.MarkProcessing(ctx, created.ID))
	msg := "translation gateway unreachable"
	_, err = jobs.SaveResult(ctx, &SaveResultRequest{
		JobID:        created.ID,
		Status:       constants.JobStatusError,
		DocType:      constants.UtilityBill,
		ErrorMessage: &msg,
		Actions: []entity.Action{
			{Type: constants.ActionPayBill, Label: "Pay the amount due", Priority: constants.PriorityMedium},
		},
	})
	require.NoError(t, err)

	require.NoError(t, jobs.ResetForReprocess(ctx, created.ID))

	reset, err := jobs.GetJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusReceived, reset.Status)
	assert.Empty(t, string(reset.DocType))
	assert.Nil(t, reset.ErrorMessage)
	assert.Nil(t, reset.CompletedAt)
	assert.False(t, reset.NeedsReview)

	// stale actions from the failed run are gone
	stored, err := actions.ListByJob(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	// the full pipeline can claim the job again
	require.NoError(t, jobs.MarkProcessing(ctx, created.ID))

	err = jobs.ResetForReprocess(ctx, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListJobsFilterByStatus(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())

	a, err := jobs.CreateJob(ctx, &CreateJobRequest{Source: constants.SourceUpload, Filename: "a.pdf"})
	require.NoError(t, err)
	_, err = jobs.CreateJob(ctx, &CreateJobRequest{Source: constants.SourceUpload, Filename: "b.pdf"})
	require.NoError(t, err)
	require.NoError(t, jobs.MarkProcessing(ctx, a.ID))

	received := constants.JobStatusReceived
	got, err := jobs.ListJobs(ctx, &received, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b.pdf", got[0].Filename)

	all, err := jobs.ListJobs(ctx, nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAuditAppendAndList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewJobRepository(db, slog.Default())
	audit := NewAuditRepository(db, slog.Default())

	created, err := jobs.CreateJob(ctx, &CreateJobRequest{Source: constants.SourceUpload, Filename: "scan.pdf"})
	require.NoError(t, err)

	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	detail := "chars=120 confidence=0.94"
	require.NoError(t, audit.Append(ctx, &entity.AuditEntry{
		JobID:      created.ID,
		Stage:      "ocr",
		Status:     constants.StageCompleted,
		DurationMS: 250,
		Detail:     &detail,
		CreatedAt:  base,
	}))
	failMsg := "gateway timeout"
	require.NoError(t, audit.Append(ctx, &entity.AuditEntry{
		JobID:     created.ID,
		Stage:     "translation",
		Status:    constants.StageFailed,
		Error:     &failMsg,
		CreatedAt: base.Add(time.Second),
	}))

	entries, err := audit.ListByJob(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ocr", entries[0].Stage)
	assert.Equal(t, constants.StageCompleted, entries[0].Status)
	require.NotNil(t, entries[0].Detail)
	assert.Equal(t, int64(250), entries[0].DurationMS)
	assert.Equal(t, "translation", entries[1].Stage)
	require.NotNil(t, entries[1].Error)
	assert.Equal(t, failMsg, *entries[1].Error)
}

func TestLabelSeedAndUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	labels := NewLabelRepository(db, slog.Default())

	seed := []classify.Label{
		{Type: constants.UtilityBill, Keywords: []string{"kilowatt"}, ConfidenceThreshold: 0.3},
		{Type: constants.USCISNotice, Keywords: []string{"uscis", "receipt number"}, ConfidenceThreshold: 0.5},
	}
	require.NoError(t, labels.Seed(ctx, seed))

	// seeding again must not clobber anything
	require.NoError(t, labels.Seed(ctx, []classify.Label{
		{Type: constants.UtilityBill, Keywords: []string{"overwritten"}, ConfidenceThreshold: 0.9},
	}))

	got, err := labels.ListLabels(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	byType := map[constants.DocumentType]classify.Label{}
	for _, l := range got {
		byType[l.Type] = l
	}
	assert.Equal(t, []string{"kilowatt"}, byType[constants.UtilityBill].Keywords)
	assert.InDelta(t, 0.3, byType[constants.UtilityBill].ConfidenceThreshold, 1e-9)

	require.NoError(t, labels.Upsert(ctx, classify.Label{
		Type:                constants.UtilityBill,
		Keywords:            []string{"kilowatt", "meter reading"},
		ConfidenceThreshold: 0.4,
	}))
	got, err = labels.ListLabels(ctx)
	require.NoError(t, err)
	byType = map[constants.DocumentType]classify.Label{}
	for _, l := range got {
		byType[l.Type] = l
	}
	assert.Equal(t, []string{"kilowatt", "meter reading"}, byType[constants.UtilityBill].Keywords)
	assert.InDelta(t, 0.4, byType[constants.UtilityBill].ConfidenceThreshold, 1e-9)
}
