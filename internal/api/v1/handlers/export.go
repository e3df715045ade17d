package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ramble/internal/api/middleware"
	"ramble/internal/api/v1/dto"
	"ramble/internal/api/v1/services"
)

// ExportHandler streams stored history as a download.
type ExportHandler struct {
	service services.ExportService
}

// NewExportHandler creates the export handler.
func NewExportHandler(service services.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export handles GET /api/v1/export.
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := middleware.BindQuery(c, &req); err != nil {
		middleware.RenderError(c, err)
		return
	}

	result, err := h.service.Export(req)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
