package model

import "time"

// Request outcomes as stored in history.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record is one stored transcription request outcome, successful or
// failed.
type Record struct {
	ID              int64     `json:"id"`
	RequestID       string    `json:"request_id"`
	FileName        string    `json:"file_name"`
	Model           string    `json:"model"`
	Task            string    `json:"task"`
	Language        string    `json:"language"`
	DurationSeconds float64   `json:"duration_seconds"`
	SegmentCount    int       `json:"segment_count"`
	SpeakerCount    int       `json:"speaker_count"`
	Transcription   string    `json:"transcription"`
	ProcessingMS    int64     `json:"processing_ms"`
	AudioSHA256     string    `json:"audio_sha256"`
	FileSizeBytes   int64     `json:"file_size_bytes"`
	Status          string    `json:"status"`
	ErrorKind       string    `json:"error_kind,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
