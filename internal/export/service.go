package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/repository"
	"github.com/paperlens/paperlens/internal/summary"
)

// Service is a tiny façade over the job repository that produces XLSX bytes
// for exports.
type Service struct {
	jobsRepo    repository.JobRepository
	actionsRepo repository.ActionRepository
	logger      *slog.Logger
}

func NewService(jobsRepo repository.JobRepository, actionsRepo repository.ActionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobsRepo: jobsRepo, actionsRepo: actionsRepo, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook of processed jobs, optionally
// filtered by status.
func (s *Service) ExportJobsXLSX(ctx context.Context, status *constants.JobStatus, limit int) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobsRepo.ListJobs(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Received",
		"Filename",
		"Status",
		"Document Type",
		"Language",
		"Confidence",
		"Urgency",
		"Needs Review",
		"Open Actions",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, job := range jobs {
		urgency := ""
		if len(job.SummaryJSON) > 0 {
			var digest summary.Summary
			if err := json.Unmarshal(job.SummaryJSON, &digest); err == nil {
				urgency = string(digest.Urgency)
			}
		}

		openActions := 0
		actions, err := s.actionsRepo.ListByJob(ctx, job.ID)
		if err == nil {
			for _, a := range actions {
				if a.Status == constants.ActionTodo {
					openActions++
				}
			}
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, job.CreatedAt.Format("2006-01-02 15:04"))
		write(2, job.Filename)
		write(3, string(job.Status))
		write(4, job.DocType.HumanLabel())
		write(5, job.DetectedLanguage)
		if job.Confidence != nil {
			write(6, fmt.Sprintf("%.2f", *job.Confidence))
		} else {
			write(6, "")
		}
		write(7, urgency)
		write(8, job.NeedsReview)
		write(9, openActions)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // received
	_ = f.SetColWidth(sheet, "B", "B", 36) // filename
	_ = f.SetColWidth(sheet, "C", "D", 18) // status, type
	_ = f.SetColWidth(sheet, "E", "F", 12) // language, confidence
	_ = f.SetColWidth(sheet, "G", "I", 14) // urgency, review, actions

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
