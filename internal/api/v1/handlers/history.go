package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "ramble/internal/api/errors"
	"ramble/internal/api/middleware"
	"ramble/internal/api/v1/dto"
	"ramble/internal/api/v1/services"
)

// HistoryHandler serves stored transcription outcomes.
type HistoryHandler struct {
	service services.HistoryService
}

// NewHistoryHandler creates the history handler.
func NewHistoryHandler(service services.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List handles GET /api/v1/transcriptions.
func (h *HistoryHandler) List(c *gin.Context) {
	var query dto.ListTranscriptionsQuery
	if err := middleware.BindQuery(c, &query); err != nil {
		middleware.RenderError(c, err)
		return
	}

	resp, err := h.service.List(query)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(resp.Pagination.Total, 10))
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/transcriptions/:id.
func (h *HistoryHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.RenderError(c, apierrors.NewValidationError("Invalid transcription ID"))
		return
	}

	resp, err := h.service.Get(id)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats.
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
