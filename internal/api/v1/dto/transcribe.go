package dto

import (
	"mime/multipart"

	"ramble/internal/app/transcription"
)

// TranscribeRequest is the multipart form accepted by POST /transcribe.
// Model validity is checked by the pipeline, not here, so the error
// message lists the catalog in one place.
type TranscribeRequest struct {
	File             *multipart.FileHeader `form:"file" binding:"required"`
	Language         string                `form:"language"`
	Task             string                `form:"task" binding:"omitempty,oneof=transcribe translate"`
	Model            string                `form:"model"`
	SpeakerDetection *bool                 `form:"speaker_detection"`
}

// Speakers reports whether speaker labels were requested. The form
// field defaults to on when absent.
func (r *TranscribeRequest) Speakers() bool {
	if r.SpeakerDetection == nil {
		return true
	}
	return *r.SpeakerDetection
}

// TranslateRequest is the multipart form accepted by POST /translate.
type TranslateRequest struct {
	File           *multipart.FileHeader `form:"file" binding:"required"`
	SourceLanguage string                `form:"source_language"`
}

// SegmentResponse is one labeled speech span in the response body.
type SegmentResponse struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// TranscribeResponse is the success body for /transcribe and
// /translate. Field order matches what existing clients parse.
type TranscribeResponse struct {
	Text             string            `json:"text"`
	Language         string            `json:"language"`
	DurationSeconds  float64           `json:"duration_seconds"`
	Segments         []SegmentResponse `json:"segments"`
	Status           string            `json:"status"`
	Model            string            `json:"model"`
	Task             string            `json:"task"`
	SpeakersDetected int               `json:"speakers_detected"`
}

// ToTranscribeResponse converts an assembled transcript to its wire
// form.
func ToTranscribeResponse(tr *transcription.Transcript) TranscribeResponse {
	segments := make([]SegmentResponse, len(tr.Segments))
	for i, seg := range tr.Segments {
		segments[i] = SegmentResponse{
			Speaker: seg.Speaker,
			Text:    seg.Text,
			Start:   seg.Start,
			End:     seg.End,
		}
	}

	return TranscribeResponse{
		Text:             tr.Text,
		Language:         tr.Language,
		DurationSeconds:  tr.DurationSeconds,
		Segments:         segments,
		Status:           "success",
		Model:            tr.Model,
		Task:             tr.Task,
		SpeakersDetected: tr.SpeakersDetected,
	}
}
