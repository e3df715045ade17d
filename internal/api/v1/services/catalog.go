package services

import (
	"ramble/internal/api/v1/dto"
	"ramble/internal/app/whisper"
)

// CatalogServiceImpl answers catalog and liveness queries from model
// runtime state.
type CatalogServiceImpl struct {
	runtime      ModelRuntime
	defaultModel string
	version      string
}

// NewCatalogService creates the catalog service. An empty defaultModel
// falls back to the catalog default.
func NewCatalogService(runtime ModelRuntime, defaultModel, version string) *CatalogServiceImpl {
	if defaultModel == "" {
		defaultModel = whisper.DefaultModel
	}
	return &CatalogServiceImpl{
		runtime:      runtime,
		defaultModel: defaultModel,
		version:      version,
	}
}

var _ CatalogService = (*CatalogServiceImpl)(nil)

// Models returns the model catalog and the active device.
func (s *CatalogServiceImpl) Models() *dto.ModelsResponse {
	return &dto.ModelsResponse{
		Models:        whisper.Catalog(),
		Default:       s.defaultModel,
		CurrentDevice: s.runtime.Device().String(),
	}
}

// Health reports liveness and which models are resident.
func (s *CatalogServiceImpl) Health() *dto.HealthResponse {
	dev := s.runtime.Device()
	return &dto.HealthResponse{
		Status:       "healthy",
		Model:        whisper.DisplayName(s.defaultModel),
		Device:       dev.String(),
		GPUAvailable: dev.GPUAvailable(),
		ModelsLoaded: s.runtime.Loaded(),
	}
}

// ServiceInfo returns the root path metadata.
func (s *CatalogServiceImpl) ServiceInfo() *dto.ServiceInfoResponse {
	return &dto.ServiceInfoResponse{
		Service: "Ramble",
		Version: s.version,
		Models:  whisper.ModelIDs(),
		Endpoints: map[string]string{
			"/transcribe": "POST - Transcribe audio (select model)",
			"/translate":  "POST - Translate to English",
			"/models":     "GET - List available models",
			"/health":     "GET - Health check",
		},
		Features: []string{
			"Multi-language support",
			"Speaker detection",
			"Translation to English",
			"Segment-level timestamps",
		},
		Status: "operational",
	}
}
