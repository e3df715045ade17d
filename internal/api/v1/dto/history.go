package dto

import (
	"time"

	"ramble/internal/app/model"
)

// ListTranscriptionsQuery holds the query parameters for listing
// stored transcription outcomes.
type ListTranscriptionsQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Model  string `form:"model"`
	Status string `form:"status" binding:"omitempty,oneof=success error"`
}

// TranscriptionRecord is one stored outcome in API responses.
type TranscriptionRecord struct {
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
	FileSizeBytes   int64     `json:"file_size_bytes"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToTranscriptionRecord converts a stored record to its wire form. The
// error kind stays server-side; clients get the message only.
func ToTranscriptionRecord(rec *model.Record) TranscriptionRecord {
	return TranscriptionRecord{
		ID:              rec.ID,
		RequestID:       rec.RequestID,
		FileName:        rec.FileName,
		Model:           rec.Model,
		Task:            rec.Task,
		Language:        rec.Language,
		DurationSeconds: rec.DurationSeconds,
		SegmentCount:    rec.SegmentCount,
		SpeakerCount:    rec.SpeakerCount,
		Transcription:   rec.Transcription,
		ProcessingMS:    rec.ProcessingMS,
		FileSizeBytes:   rec.FileSizeBytes,
		Status:          rec.Status,
		Error:           rec.ErrorMessage,
		CreatedAt:       rec.CreatedAt,
	}
}

// PaginationResponse carries paging metadata alongside a list.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination computes paging metadata for a total row count.
func NewPagination(page, limit int, total int64) PaginationResponse {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// PaginatedTranscriptionsResponse is one page of stored outcomes.
type PaginatedTranscriptionsResponse struct {
	Transcriptions []TranscriptionRecord `json:"transcriptions"`
	Pagination     PaginationResponse    `json:"pagination"`
}
