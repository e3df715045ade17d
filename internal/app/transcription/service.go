package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ramble/internal/app/audio"
	"ramble/internal/app/device"
	"ramble/internal/app/metrics"
	"ramble/internal/app/model"
	"ramble/internal/app/repository"
	"ramble/internal/app/speaker"
	"ramble/internal/app/util/files"
	"ramble/internal/app/whisper"
)

// Request is one transcription job as accepted by the service. The
// caller keeps ownership of Audio; everything derived from it lives in
// a per-request directory removed before Process returns.
type Request struct {
	RequestID string
	Filename  string
	Audio     io.Reader
	Model     string
	Task      whisper.Task
	Language  string
	Speakers  bool
}

// Normalizer converts an uploaded audio file into canonical WAV.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (string, error)
}

// ModelSource hands out loaded model handles.
type ModelSource interface {
	Acquire(ctx context.Context, id string) (*whisper.Handle, error)
	Device() device.Device
}

// Recognizer runs inference over normalized audio.
type Recognizer interface {
	Recognize(ctx context.Context, handle *whisper.Handle, wavPath string, opts whisper.Options) (whisper.Result, error)
}

// ResultCache short-circuits repeat requests for identical audio and
// options. Get returns (nil, nil) on a miss; a failing cache is treated
// as a miss, never as a request failure.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Transcript, error)
	Set(ctx context.Context, key string, tr *Transcript) error
}

// NopCache is the ResultCache used when caching is disabled.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) (*Transcript, error) { return nil, nil }
func (NopCache) Set(ctx context.Context, key string, tr *Transcript) error {
	return nil
}

// CacheKey derives the result cache key for an upload hash and the
// options that shape the response.
func CacheKey(sha, modelID string, task whisper.Task, language string, speakers bool) string {
	if language == "" {
		language = "auto"
	}
	return fmt.Sprintf("ramble:result:%s:%s:%s:%s:%t", sha, modelID, task, language, speakers)
}

// Service drives the request pipeline: persist the upload, normalize,
// acquire a model handle, recognize, label speakers, assemble. Failures
// surface as the producing package's error types.
type Service struct {
	normalizer Normalizer
	models     ModelSource
	engine     Recognizer
	cache      ResultCache
	dao        repository.RecordDAO
	tmpRoot    string
	logger     *zap.Logger
}

// NewService wires the pipeline. A nil cache disables caching, a nil
// dao disables history recording, an empty tmpRoot falls back to the
// system temp dir.
func NewService(normalizer Normalizer, models ModelSource, engine Recognizer, cache ResultCache, dao repository.RecordDAO, tmpRoot string, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if tmpRoot == "" {
		tmpRoot = os.TempDir()
	}
	return &Service{
		normalizer: normalizer,
		models:     models,
		engine:     engine,
		cache:      cache,
		dao:        dao,
		tmpRoot:    tmpRoot,
		logger:     logger,
	}
}

// Process runs one request through the pipeline and returns the
// assembled transcript. The per-request work directory is removed on
// every exit path.
func (s *Service) Process(ctx context.Context, req Request) (*Transcript, error) {
	start := time.Now()

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Model == "" {
		req.Model = whisper.DefaultModel
	}
	if req.Task == "" {
		req.Task = whisper.TaskTranscribe
	}

	// Reject unknown identifiers before any file handling.
	if !whisper.IsKnownModel(req.Model) {
		err := &whisper.InvalidModelError{ID: req.Model}
		s.record(req, nil, "", 0, time.Since(start), err)
		return nil, err
	}

	s.logger.Info("processing transcription request",
		zap.String("request_id", req.RequestID),
		zap.String("file", req.Filename),
		zap.String("model", req.Model),
		zap.String("task", string(req.Task)),
	)

	workDir := filepath.Join(s.tmpRoot, "ramble-"+req.RequestID)
	if err := files.EnsureDir(workDir); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath, size, err := s.persistUpload(workDir, req)
	if err != nil {
		s.record(req, nil, "", 0, time.Since(start), err)
		return nil, err
	}

	sum, err := files.SHA256(inputPath)
	if err != nil {
		s.logger.Warn("failed to hash upload", zap.Error(err))
		sum = ""
	}

	if sum != "" {
		key := CacheKey(sum, req.Model, req.Task, req.Language, req.Speakers)
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			s.logger.Info("result served from cache",
				zap.String("request_id", req.RequestID),
				zap.String("key", key),
			)
			s.record(req, cached, sum, size, time.Since(start), nil)
			return cached, nil
		}
	}

	wavPath, err := s.normalizer.Normalize(ctx, inputPath)
	if err != nil {
		var conv *audio.ConversionError
		var timeout *audio.TimeoutError
		switch {
		case errors.As(err, &conv):
			metrics.RecordConversionFailure("decode")
		case errors.As(err, &timeout):
			metrics.RecordConversionFailure("timeout")
		}
		s.record(req, nil, sum, size, time.Since(start), err)
		return nil, err
	}

	handle, err := s.models.Acquire(ctx, req.Model)
	if err != nil {
		s.record(req, nil, sum, size, time.Since(start), err)
		return nil, err
	}

	opts := whisper.Options{
		Task:     req.Task,
		Language: req.Language,
		FP16:     handle.Device.FP16,
	}
	res, err := s.engine.Recognize(ctx, handle, wavPath, opts)
	if err != nil {
		s.record(req, nil, sum, size, time.Since(start), err)
		return nil, err
	}

	labels := speaker.Assign(res.Segments, req.Speakers)
	tr := Assemble(res, labels, req.Model, req.Task)

	if sum != "" {
		key := CacheKey(sum, req.Model, req.Task, req.Language, req.Speakers)
		if err := s.cache.Set(ctx, key, &tr); err != nil {
			s.logger.Warn("failed to cache result", zap.Error(err))
		}
	}

	s.record(req, &tr, sum, size, time.Since(start), nil)

	s.logger.Info("transcription complete",
		zap.String("request_id", req.RequestID),
		zap.String("language", tr.Language),
		zap.Float64("duration_seconds", tr.DurationSeconds),
		zap.Int("segments", len(tr.Segments)),
		zap.Duration("took", time.Since(start)),
	)
	return &tr, nil
}

// persistUpload writes the request body into the work directory,
// keeping the original extension so the decoder can sniff the
// container format.
func (s *Service) persistUpload(workDir string, req Request) (string, int64, error) {
	ext := filepath.Ext(req.Filename)
	if ext == "" {
		ext = ".ogg"
	}
	inputPath := filepath.Join(workDir, "upload"+ext)

	out, err := os.Create(inputPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to persist upload: %w", err)
	}
	size, err := io.Copy(out, req.Audio)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to persist upload: %w", err)
	}
	return inputPath, size, nil
}

func (s *Service) record(req Request, tr *Transcript, sha string, size int64, took time.Duration, procErr error) {
	if s.dao == nil {
		return
	}

	rec := &model.Record{
		RequestID:     req.RequestID,
		FileName:      req.Filename,
		Model:         req.Model,
		Task:          string(req.Task),
		Language:      req.Language,
		ProcessingMS:  took.Milliseconds(),
		AudioSHA256:   sha,
		FileSizeBytes: size,
		Status:        model.StatusSuccess,
	}
	if tr != nil {
		rec.Language = tr.Language
		rec.DurationSeconds = tr.DurationSeconds
		rec.SegmentCount = len(tr.Segments)
		rec.SpeakerCount = tr.SpeakersDetected
		rec.Transcription = tr.Text
	}
	if procErr != nil {
		rec.Status = model.StatusError
		rec.ErrorKind = ErrorKind(procErr)
		rec.ErrorMessage = procErr.Error()
	}

	if err := s.dao.Save(rec); err != nil {
		s.logger.Warn("failed to record transcription history", zap.Error(err))
	}
}

// ErrorKind classifies a pipeline error for history records and
// metrics.
func ErrorKind(err error) string {
	var invalid *whisper.InvalidModelError
	var conv *audio.ConversionError
	var timeout *audio.TimeoutError
	var load *whisper.ModelLoadError
	var rec *whisper.RecognitionError
	switch {
	case errors.As(err, &invalid):
		return "invalid_model"
	case errors.As(err, &conv):
		return "conversion"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &load):
		return "model_load"
	case errors.As(err, &rec):
		return "recognition"
	default:
		return "internal"
	}
}
