package dto

import (
	"ramble/internal/app/whisper"
)

// ModelsResponse describes the model catalog and the device inference
// currently runs on.
type ModelsResponse struct {
	Models        map[string]whisper.ModelInfo `json:"models"`
	Default       string                       `json:"default"`
	CurrentDevice string                       `json:"current_device"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status       string   `json:"status"`
	Model        string   `json:"model"`
	Device       string   `json:"device"`
	GPUAvailable bool     `json:"gpu_available"`
	ModelsLoaded []string `json:"models_loaded"`
}

// ServiceInfoResponse is the service metadata answered on the root
// path.
type ServiceInfoResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Models    []string          `json:"models"`
	Endpoints map[string]string `json:"endpoints"`
	Features  []string          `json:"features"`
	Status    string            `json:"status"`
}
