// handlers_labels.go - Classifier label administration
package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/classify"
	"github.com/paperlens/paperlens/internal/repository"
)

// LabelHandler manages classifier label definitions. Upserts refresh the
// in-memory label cache so new keywords take effect without a restart.
type LabelHandler struct {
	labels repository.LabelRepository
	cache  *classify.LabelCache
	logger *slog.Logger
}

func NewLabelHandler(labels repository.LabelRepository, cache *classify.LabelCache, logger *slog.Logger) *LabelHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelHandler{labels: labels, cache: cache, logger: logger}
}

type labelView struct {
	Type                constants.DocumentType `json:"type"`
	Keywords            []string               `json:"keywords"`
	ConfidenceThreshold float64                `json:"confidence_threshold"`
	HasEmbedding        bool                   `json:"has_embedding"`
}

// HandleListLabels returns the cached label set.
func (h *LabelHandler) HandleListLabels(c echo.Context) error {
	labels := h.cache.Labels()
	out := make([]labelView, len(labels))
	for i, l := range labels {
		out[i] = labelView{
			Type:                l.Type,
			Keywords:            l.Keywords,
			ConfidenceThreshold: l.ConfidenceThreshold,
			HasEmbedding:        len(l.Embedding) > 0,
		}
	}
	return c.JSON(http.StatusOK, out)
}

type upsertLabelRequest struct {
	Keywords            []string `json:"keywords"`
	ConfidenceThreshold float64  `json:"confidence_threshold"`
}

func (r *upsertLabelRequest) validate() error {
	if len(r.Keywords) == 0 {
		return NewValidationError("keywords")
	}
	if r.ConfidenceThreshold < 0 || r.ConfidenceThreshold > 1 {
		return NewBadRequestError("confidence_threshold must be in [0, 1]", nil)
	}
	return nil
}

// HandleUpsertLabel writes a label definition and refreshes the cache.
func (h *LabelHandler) HandleUpsertLabel(c echo.Context) error {
	docType, ok := constants.CanonicalDocumentType(c.Param("type"))
	if !ok {
		return NewValidationError("type")
	}

	var req upsertLabelRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	label := classify.Label{
		Type:                docType,
		Keywords:            req.Keywords,
		ConfidenceThreshold: req.ConfidenceThreshold,
	}
	if err := h.labels.Upsert(ctx, label); err != nil {
		return NewInternalError("failed to save label", err)
	}
	if err := h.cache.Refresh(ctx); err != nil {
		h.logger.Error("server.labels.refresh_failed", "doc_type", docType, "error", err)
		return NewInternalError("label saved but cache refresh failed", err)
	}

	h.logger.Info("server.labels.upserted", "doc_type", docType, "keywords", len(req.Keywords))
	return c.NoContent(http.StatusNoContent)
}
