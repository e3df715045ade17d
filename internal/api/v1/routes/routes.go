package routes

import (
	"github.com/gin-gonic/gin"

	"ramble/internal/api/v1/handlers"
	"ramble/internal/api/v1/services"
)

// ServiceContainer holds the services handlers depend on.
type ServiceContainer struct {
	Transcription services.TranscriptionService
	Catalog       services.CatalogService
	History       services.HistoryService
	Export        services.ExportService
}

// RegisterRoot wires the root-level endpoints. The CLI contract depends
// on these exact paths, so they live outside the versioned group.
func RegisterRoot(router *gin.Engine, container *ServiceContainer) {
	transcribeHandler := handlers.NewTranscribeHandler(container.Transcription)
	router.POST("/transcribe", transcribeHandler.Transcribe)
	router.POST("/translate", transcribeHandler.Translate)

	catalogHandler := handlers.NewCatalogHandler(container.Catalog)
	router.GET("/", catalogHandler.Root)
	router.GET("/models", catalogHandler.Models)
	router.GET("/health", catalogHandler.Health)
}

// RegisterV1 wires the history and ops endpoints under the given
// group. History endpoints are skipped when no store is configured.
func RegisterV1(router *gin.RouterGroup, container *ServiceContainer) {
	if container.History != nil {
		historyHandler := handlers.NewHistoryHandler(container.History)
		transcriptions := router.Group("/transcriptions")
		{
			transcriptions.GET("", historyHandler.List)
			transcriptions.GET("/:id", historyHandler.Get)
		}
		router.GET("/stats", historyHandler.Stats)
	}

	if container.Export != nil {
		exportHandler := handlers.NewExportHandler(container.Export)
		router.GET("/export", exportHandler.Export)
	}
}
