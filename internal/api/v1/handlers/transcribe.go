package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ramble/internal/api/middleware"
	"ramble/internal/api/v1/dto"
	"ramble/internal/api/v1/services"
)

// TranscribeHandler serves the audio upload endpoints.
type TranscribeHandler struct {
	service services.TranscriptionService
}

// NewTranscribeHandler creates the upload handler.
func NewTranscribeHandler(service services.TranscriptionService) *TranscribeHandler {
	return &TranscribeHandler{service: service}
}

// Transcribe handles POST /transcribe. It accepts a multipart audio
// upload and answers with the transcript or the standard error body.
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	var req dto.TranscribeRequest
	if err := middleware.BindForm(c, &req); err != nil {
		middleware.RenderError(c, err)
		return
	}

	resp, err := h.service.Transcribe(c.Request.Context(), middleware.GetRequestID(c), &req)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Translate handles POST /translate. Same upload contract as
// Transcribe, output text always in English.
func (h *TranscribeHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := middleware.BindForm(c, &req); err != nil {
		middleware.RenderError(c, err)
		return
	}

	resp, err := h.service.Translate(c.Request.Context(), middleware.GetRequestID(c), &req)
	if err != nil {
		middleware.RenderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
