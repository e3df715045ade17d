package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func audioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS fake audio"), 0o644))
	return path
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	var (
		gotPath     string
		gotFilename string
		gotContent  []byte
		gotForm     map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotContent, _ = io.ReadAll(file)
		gotForm = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			gotForm[key] = values[0]
		}
		json.NewEncoder(w).Encode(Transcript{
			Text:             "hello there",
			Language:         "en",
			DurationSeconds:  3.5,
			Segments:         []Segment{{Speaker: "Speaker 1", Text: "hello there", Start: 0, End: 3.5}},
			Model:            "whisper-base",
			Task:             "transcribe",
			SpeakersDetected: 1,
		})
	}))
	defer srv.Close()

	result, err := New(srv.URL).Transcribe(context.Background(), audioFixture(t), TranscribeOptions{
		Model:           "base",
		Language:        "en",
		DisableSpeakers: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/transcribe", gotPath)
	assert.Equal(t, "note.ogg", gotFilename)
	assert.Equal(t, []byte("OggS fake audio"), gotContent)
	assert.Equal(t, "base", gotForm["model"])
	assert.Equal(t, "en", gotForm["language"])
	assert.Equal(t, "false", gotForm["speaker_detection"])

	assert.Equal(t, "hello there", result.Text)
	assert.Equal(t, "whisper-base", result.Model)
	assert.Len(t, result.Segments, 1)
}

func TestTranscribeOmitsEmptyFields(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		gotForm = r.MultipartForm.Value
		json.NewEncoder(w).Encode(Transcript{Text: "ok"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Transcribe(context.Background(), audioFixture(t), TranscribeOptions{})
	require.NoError(t, err)

	assert.NotContains(t, gotForm, "model")
	assert.NotContains(t, gotForm, "language")
	assert.NotContains(t, gotForm, "task")
	assert.NotContains(t, gotForm, "speaker_detection")
}

func TestTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"text":"","status":"error","error":"Invalid model \"huge\". Choose from: [tiny base small medium large]","request_id":"r-42"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Transcribe(context.Background(), audioFixture(t), TranscribeOptions{Model: "huge"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `Invalid model "huge". Choose from: [tiny base small medium large]`, apiErr.Message)
	assert.Equal(t, "r-42", apiErr.RequestID)
	assert.Equal(t, apiErr.Message, err.Error())
}

func TestTranscribeNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream gone")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Transcribe(context.Background(), audioFixture(t), TranscribeOptions{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "server returned status 502", apiErr.Error())
}

func TestTranscribeMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be reached")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.ogg"), TranscribeOptions{})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		json.NewEncoder(w).Encode(Catalog{
			Models: map[string]ModelInfo{
				"tiny": {Size: "39M", Speed: "very fast", Accuracy: "basic", VRAM: "~1GB"},
			},
			Default:       "tiny",
			CurrentDevice: "cpu",
		})
	}))
	defer srv.Close()

	catalog, err := New(srv.URL + "/").Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tiny", catalog.Default)
	assert.Equal(t, "cpu", catalog.CurrentDevice)
	assert.Equal(t, "39M", catalog.Models["tiny"].Size)
}

func TestEndpointResolution(t *testing.T) {
	t.Setenv("RAMBLE_ENDPOINT", "http://env.example:9000")
	assert.Equal(t, "http://flag.example:7000", Endpoint("http://flag.example:7000"))
	assert.Equal(t, "http://env.example:9000", Endpoint(""))

	t.Setenv("RAMBLE_ENDPOINT", "")
	assert.Equal(t, DefaultEndpoint, Endpoint(""))
}
