package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ramble/internal/api/errors"
	"ramble/internal/api/v1/dto"
	"ramble/internal/api/v1/routes"
	"ramble/internal/app/repository"
)

func historyPage() *dto.PaginatedTranscriptionsResponse {
	return &dto.PaginatedTranscriptionsResponse{
		Transcriptions: []dto.TranscriptionRecord{
			{
				ID:        2,
				RequestID: "req-2",
				FileName:  "second.ogg",
				Model:     "tiny",
				Status:    "success",
				CreatedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				ID:        1,
				RequestID: "req-1",
				FileName:  "first.ogg",
				Model:     "tiny",
				Status:    "error",
				Error:     "Audio conversion failed: bad header",
				CreatedAt: time.Date(2025, 4, 1, 11, 0, 0, 0, time.UTC),
			},
		},
		Pagination: dto.NewPagination(1, 20, 2),
	}
}

func TestListTranscriptions(t *testing.T) {
	service := &fakeHistoryService{page: historyPage()}
	router := newTestRouter(&routes.ServiceContainer{History: service})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions?page=1&limit=20&model=tiny", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	got := decodeBody(t, rec)
	items, ok := got["transcriptions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)

	pagination, ok := got["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, false, pagination["has_next"])

	assert.Equal(t, 1, service.lastQuery.Page)
	assert.Equal(t, 20, service.lastQuery.Limit)
	assert.Equal(t, "tiny", service.lastQuery.Model)
}

func TestListTranscriptionsAppliesQueryDefaults(t *testing.T) {
	service := &fakeHistoryService{page: historyPage()}
	router := newTestRouter(&routes.ServiceContainer{History: service})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, service.lastQuery.Page)
	assert.Equal(t, 20, service.lastQuery.Limit)
}

func TestListTranscriptionsRejectsOversizedLimit(t *testing.T) {
	service := &fakeHistoryService{page: historyPage()}
	router := newTestRouter(&routes.ServiceContainer{History: service})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions?limit=500", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error", got["status"])
	assert.Equal(t, "Invalid request: limit must be at most 100", got["error"])
}

func TestGetTranscription(t *testing.T) {
	service := &fakeHistoryService{rec: &historyPage().Transcriptions[0]}
	router := newTestRouter(&routes.ServiceContainer{History: service})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions/2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), service.lastID)

	got := decodeBody(t, rec)
	assert.Equal(t, float64(2), got["id"])
	assert.Equal(t, "second.ogg", got["file_name"])
}

func TestGetTranscriptionInvalidID(t *testing.T) {
	router := newTestRouter(&routes.ServiceContainer{History: &fakeHistoryService{}})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions/abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "Invalid transcription ID", got["error"])
}

func TestGetTranscriptionNotFound(t *testing.T) {
	service := &fakeHistoryService{err: apierrors.NewNotFoundError("transcription")}
	router := newTestRouter(&routes.ServiceContainer{History: service})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions/99", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error", got["status"])
	assert.Equal(t, "transcription not found", got["error"])
}

func TestStatsEndpoint(t *testing.T) {
	service := &fakeHistoryService{stats: &repository.Stats{
		TotalRequests: 10,
		Succeeded:     8,
		Failed:        2,
		AudioSeconds:  123.5,
		ByModel:       map[string]int64{"tiny": 7, "base": 3},
	}}
	router := newTestRouter(&routes.ServiceContainer{History: service})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody(t, rec)
	assert.Equal(t, float64(10), got["total_requests"])
	assert.Equal(t, float64(8), got["succeeded"])
	assert.Equal(t, float64(123.5), got["audio_seconds"])

	byModel, ok := got["by_model"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), byModel["tiny"])
}

func TestHistoryRoutesAbsentWithoutStore(t *testing.T) {
	router := newTestRouter(&routes.ServiceContainer{})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
