package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"ramble/internal/api/middleware"
	"ramble/internal/api/v1/dto"
	"ramble/internal/api/v1/routes"
	"ramble/internal/app/repository"
)

type fakeTranscriptionService struct {
	resp *dto.TranscribeResponse
	err  error

	lastRequestID  string
	lastTranscribe *dto.TranscribeRequest
	lastTranslate  *dto.TranslateRequest
}

func (f *fakeTranscriptionService) Transcribe(_ context.Context, requestID string, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	f.lastRequestID = requestID
	f.lastTranscribe = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeTranscriptionService) Translate(_ context.Context, requestID string, req *dto.TranslateRequest) (*dto.TranscribeResponse, error) {
	f.lastRequestID = requestID
	f.lastTranslate = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeCatalogService struct {
	models *dto.ModelsResponse
	health *dto.HealthResponse
	info   *dto.ServiceInfoResponse
}

func (f *fakeCatalogService) Models() *dto.ModelsResponse           { return f.models }
func (f *fakeCatalogService) Health() *dto.HealthResponse           { return f.health }
func (f *fakeCatalogService) ServiceInfo() *dto.ServiceInfoResponse { return f.info }

type fakeHistoryService struct {
	page  *dto.PaginatedTranscriptionsResponse
	rec   *dto.TranscriptionRecord
	stats *repository.Stats
	err   error

	lastQuery dto.ListTranscriptionsQuery
	lastID    int64
}

func (f *fakeHistoryService) List(query dto.ListTranscriptionsQuery) (*dto.PaginatedTranscriptionsResponse, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeHistoryService) Get(id int64) (*dto.TranscriptionRecord, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func (f *fakeHistoryService) Stats() (*repository.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakeExportService struct {
	result *dto.ExportResult
	err    error

	lastReq dto.ExportRequest
}

func (f *fakeExportService) Export(req dto.ExportRequest) (*dto.ExportResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// newTestRouter assembles the routes the way the server does, with the
// request ID middleware the error body depends on.
func newTestRouter(container *routes.ServiceContainer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	routes.RegisterRoot(router, container)
	api := router.Group("/api")
	routes.RegisterV1(api.Group("/v1"), container)
	return router
}

// uploadBody builds a multipart body with one file part and the given
// form fields.
func uploadBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func doRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
