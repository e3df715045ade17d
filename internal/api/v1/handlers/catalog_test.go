package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ramble/internal/api/v1/dto"
	"ramble/internal/api/v1/routes"
	"ramble/internal/app/whisper"
)

func newCatalogFake() *fakeCatalogService {
	return &fakeCatalogService{
		models: &dto.ModelsResponse{
			Models:        whisper.Catalog(),
			Default:       "tiny",
			CurrentDevice: "cpu",
		},
		health: &dto.HealthResponse{
			Status:       "healthy",
			Model:        "whisper-tiny",
			Device:       "cpu",
			GPUAvailable: false,
			ModelsLoaded: []string{"tiny"},
		},
		info: &dto.ServiceInfoResponse{
			Service: "Ramble",
			Version: "2.1.0",
			Models:  whisper.ModelIDs(),
			Endpoints: map[string]string{
				"/transcribe": "POST - Transcribe audio (select model)",
			},
			Features: []string{"Speaker detection"},
			Status:   "operational",
		},
	}
}

func TestModelsEndpoint(t *testing.T) {
	router := newTestRouter(&routes.ServiceContainer{Catalog: newCatalogFake()})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody(t, rec)
	assert.Equal(t, "tiny", got["default"])
	assert.Equal(t, "cpu", got["current_device"])

	models, ok := got["models"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, models, 5)

	tiny, ok := models["tiny"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fastest", tiny["speed"])
	assert.Equal(t, "1GB", tiny["vram"])
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&routes.ServiceContainer{Catalog: newCatalogFake()})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody(t, rec)
	assert.Equal(t, "healthy", got["status"])
	assert.Equal(t, "whisper-tiny", got["model"])
	assert.Equal(t, "cpu", got["device"])
	assert.Equal(t, false, got["gpu_available"])
	assert.Equal(t, []interface{}{"tiny"}, got["models_loaded"])
}

func TestRootEndpoint(t *testing.T) {
	router := newTestRouter(&routes.ServiceContainer{Catalog: newCatalogFake()})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody(t, rec)
	assert.Equal(t, "Ramble", got["service"])
	assert.Equal(t, "2.1.0", got["version"])
	assert.Equal(t, "operational", got["status"])
	assert.Len(t, got["models"], 5)
}
