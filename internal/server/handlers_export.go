// handlers_export.go - XLSX report download
package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/export"
)

type ExportHandler struct {
	svc *export.Service
}

func NewExportHandler(svc *export.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// HandleExportJobs streams an XLSX workbook of recent jobs.
func (h *ExportHandler) HandleExportJobs(c echo.Context) error {
	var status *constants.JobStatus
	if s := c.QueryParam("status"); s != "" {
		st := constants.JobStatus(s)
		status = &st
	}

	data, err := h.svc.ExportJobsXLSX(c.Request().Context(), status, 500)
	if err != nil {
		return NewInternalError("failed to build export", err)
	}

	filename := "documents-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
