package services

import (
	"context"

	"ramble/internal/api/v1/dto"
	"ramble/internal/app/device"
	"ramble/internal/app/repository"
	"ramble/internal/app/transcription"
)

// Processor runs one upload through the recognition pipeline.
// Implemented by *transcription.Service.
type Processor interface {
	Process(ctx context.Context, req transcription.Request) (*transcription.Transcript, error)
}

// ModelRuntime reports process-wide model state. Implemented by
// *whisper.Registry.
type ModelRuntime interface {
	Device() device.Device
	Loaded() []string
}

// TranscriptionService handles uploads for the transcribe and
// translate endpoints.
type TranscriptionService interface {
	Transcribe(ctx context.Context, requestID string, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error)
	Translate(ctx context.Context, requestID string, req *dto.TranslateRequest) (*dto.TranscribeResponse, error)
}

// CatalogService answers catalog, liveness and service metadata
// queries.
type CatalogService interface {
	Models() *dto.ModelsResponse
	Health() *dto.HealthResponse
	ServiceInfo() *dto.ServiceInfoResponse
}

// HistoryService reads stored transcription outcomes.
type HistoryService interface {
	List(query dto.ListTranscriptionsQuery) (*dto.PaginatedTranscriptionsResponse, error)
	Get(id int64) (*dto.TranscriptionRecord, error)
	Stats() (*repository.Stats, error)
}

// ExportService renders stored history as a downloadable file.
type ExportService interface {
	Export(req dto.ExportRequest) (*dto.ExportResult, error)
}
