package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ramble/internal/api/v1/services"
)

// CatalogHandler serves the catalog, liveness and service metadata
// endpoints.
type CatalogHandler struct {
	service services.CatalogService
}

// NewCatalogHandler creates the catalog handler.
func NewCatalogHandler(service services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Models handles GET /models.
func (h *CatalogHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Models())
}

// Health handles GET /health.
func (h *CatalogHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health())
}

// Root handles GET /.
func (h *CatalogHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ServiceInfo())
}
