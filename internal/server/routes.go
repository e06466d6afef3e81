// routes.go - Route registration helpers
package server

import (
	"database/sql"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/paperlens/paperlens/internal/async"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/export"
	"github.com/paperlens/paperlens/internal/repository"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	DB         *sql.DB
	Jobs       repository.JobRepository
	Actions    repository.ActionRepository
	Audit      repository.AuditRepository
	Labels     repository.LabelRepository
	LabelCache *classify.LabelCache
	Queue      async.Queue
	Export     *export.Service
	Providers  map[string]HealthChecker
	UploadDir  string
	Version    string
	Logger     *slog.Logger
}

// Handlers holds all handler instances.
type Handlers struct {
	Health *HealthHandler
	Jobs   *JobHandler
	Labels *LabelHandler
	Export *ExportHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.DB, deps.Version, deps.Providers, deps.Logger),
		Jobs:   NewJobHandler(deps.Jobs, deps.Actions, deps.Audit, deps.Queue, deps.UploadDir, deps.Logger),
		Labels: NewLabelHandler(deps.Labels, deps.LabelCache, deps.Logger),
		Export: NewExportHandler(deps.Export),
	}
}

// New builds the echo instance with middleware and all routes registered.
func New(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	RegisterRoutes(e, NewHandlers(deps))
	return e
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)

	jobGroup := e.Group("/api/jobs")
	jobGroup.POST("", handlers.Jobs.HandleUpload)
	jobGroup.GET("", handlers.Jobs.HandleListJobs)
	jobGroup.GET("/:id", handlers.Jobs.HandleGetJob)
	jobGroup.POST("/:id/reprocess", handlers.Jobs.HandleReprocessJob)

	e.PUT("/api/actions/:id/status", handlers.Jobs.HandleUpdateAction)

	labelGroup := e.Group("/api/labels")
	labelGroup.GET("", handlers.Labels.HandleListLabels)
	labelGroup.PUT("/:type", handlers.Labels.HandleUpsertLabel)

	e.GET("/api/export/jobs.xlsx", handlers.Export.HandleExportJobs)
}
