package services

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	apierrors "ramble/internal/api/errors"
	"ramble/internal/api/v1/dto"
	"ramble/internal/app/metrics"
	"ramble/internal/app/transcription"
	"ramble/internal/app/whisper"
)

// TranscriptionServiceImpl bridges the HTTP forms and the recognition
// pipeline.
type TranscriptionServiceImpl struct {
	processor Processor
	logger    *zap.Logger
}

// NewTranscriptionService creates the transcription service.
func NewTranscriptionService(processor Processor, logger *zap.Logger) *TranscriptionServiceImpl {
	return &TranscriptionServiceImpl{
		processor: processor,
		logger:    logger,
	}
}

var _ TranscriptionService = (*TranscriptionServiceImpl)(nil)

// Transcribe runs an uploaded file through the pipeline with the
// options taken from the form.
func (s *TranscriptionServiceImpl) Transcribe(ctx context.Context, requestID string, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	return s.run(ctx, "transcribe", requestID, req.File, transcription.Request{
		Model:    req.Model,
		Task:     whisper.Task(req.Task),
		Language: req.Language,
		Speakers: req.Speakers(),
	})
}

// Translate transcribes into English. It mirrors the transcribe path
// with the task forced, speaker labels off and the default model.
func (s *TranscriptionServiceImpl) Translate(ctx context.Context, requestID string, req *dto.TranslateRequest) (*dto.TranscribeResponse, error) {
	return s.run(ctx, "translate", requestID, req.File, transcription.Request{
		Task:     whisper.TaskTranslate,
		Language: req.SourceLanguage,
		Speakers: false,
	})
}

func (s *TranscriptionServiceImpl) run(ctx context.Context, endpoint, requestID string, file *multipart.FileHeader, preq transcription.Request) (*dto.TranscribeResponse, error) {
	start := time.Now()

	upload, err := file.Open()
	if err != nil {
		metrics.RecordRequest(endpoint, string(apierrors.KindValidation), time.Since(start).Seconds())
		return nil, apierrors.NewValidationError("Could not read uploaded file")
	}
	defer upload.Close()

	preq.RequestID = requestID
	preq.Filename = file.Filename
	preq.Audio = upload

	tr, err := s.processor.Process(ctx, preq)
	if err != nil {
		apiErr := apierrors.FromDomain(err)
		apiErr.RequestID = requestID
		if apiErr.HTTPStatus() >= http.StatusInternalServerError {
			s.logger.Error("transcription request failed",
				zap.String("request_id", requestID),
				zap.String("kind", string(apiErr.Kind)),
				zap.Error(err),
			)
		}
		metrics.RecordRequest(endpoint, string(apiErr.Kind), time.Since(start).Seconds())
		return nil, apiErr
	}

	metrics.RecordRequest(endpoint, "success", time.Since(start).Seconds())

	resp := dto.ToTranscribeResponse(tr)
	return &resp, nil
}
