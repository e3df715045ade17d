// Package client talks to a running ramble server over HTTP. The
// command line tools use it to upload audio and to query the model
// catalog.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultEndpoint is used when neither the endpoint flag nor the
// RAMBLE_ENDPOINT variable names a server.
const DefaultEndpoint = "http://localhost:8090"

// Transcription on CPU can take minutes for long recordings, so the
// client waits as long as the server is willing to keep the request
// open.
const requestTimeout = 15 * time.Minute

// Endpoint resolves the server address: explicit flag value first,
// then RAMBLE_ENDPOINT, then the local default.
func Endpoint(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("RAMBLE_ENDPOINT"); env != "" {
		return env
	}
	return DefaultEndpoint
}

// Client is an HTTP client bound to one server endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// TranscribeOptions mirror the form fields accepted by POST
// /transcribe. Zero values are omitted from the form so the server
// applies its own defaults.
type TranscribeOptions struct {
	Model           string
	Language        string
	Task            string
	DisableSpeakers bool
}

// Segment is one labeled span of a transcript.
type Segment struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Transcript is the success body answered by POST /transcribe.
type Transcript struct {
	Text             string    `json:"text"`
	Language         string    `json:"language"`
	DurationSeconds  float64   `json:"duration_seconds"`
	Segments         []Segment `json:"segments"`
	Model            string    `json:"model"`
	Task             string    `json:"task"`
	SpeakersDetected int       `json:"speakers_detected"`
}

// ModelInfo describes one catalog entry as served by GET /models.
type ModelInfo struct {
	Size     string `json:"size"`
	Speed    string `json:"speed"`
	Accuracy string `json:"accuracy"`
	VRAM     string `json:"vram"`
}

// Catalog is the body answered by GET /models.
type Catalog struct {
	Models        map[string]ModelInfo `json:"models"`
	Default       string               `json:"default"`
	CurrentDevice string               `json:"current_device"`
}

// APIError is a non-success answer from the server, carrying the
// message and request id from the error body when present.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return e.Message
}

// Transcribe uploads the audio file at path and returns the finished
// transcript. The file streams through the request body, so large
// recordings do not get buffered in memory.
func (c *Client) Transcribe(ctx context.Context, path string, opts TranscribeOptions) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		err := writeForm(form, f, filepath.Base(path), opts)
		if cerr := form.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/transcribe", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result Transcript
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Models fetches the model catalog from the server.
func (c *Client) Models(ctx context.Context) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/models", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var catalog Catalog
	if err := decode(resp, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func writeForm(form *multipart.Writer, file io.Reader, name string, opts TranscribeOptions) error {
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	fields := [][2]string{
		{"model", opts.Model},
		{"language", opts.Language},
		{"task", opts.Task},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		if err := form.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}
	if opts.DisableSpeakers {
		return form.WriteField("speaker_detection", "false")
	}
	return nil
}

func decode(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var wire struct {
			Error     string `json:"error"`
			RequestID string `json:"request_id"`
		}
		if json.Unmarshal(body, &wire) == nil {
			apiErr.Message = wire.Error
			apiErr.RequestID = wire.RequestID
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
