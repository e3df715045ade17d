package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// CanonicalSampleRate is the sample rate the recognizer consumes.
	CanonicalSampleRate = 16000

	// DefaultTimeout bounds a single decoder invocation.
	DefaultTimeout = 30 * time.Second
)

// Normalizer converts arbitrary uploaded audio into the canonical form
// the recognizer consumes: mono 16 kHz PCM WAV. Decoding is delegated to
// an external ffmpeg binary and bounded by a wall-clock timeout.
type Normalizer struct {
	ffmpeg  string
	ffprobe string
	timeout time.Duration
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer around the given decoder binaries.
// Empty binary paths fall back to ffmpeg/ffprobe on PATH; a zero timeout
// falls back to DefaultTimeout.
func NewNormalizer(ffmpegBin, ffprobeBin string, timeout time.Duration, logger *zap.Logger) *Normalizer {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Normalizer{
		ffmpeg:  ffmpegBin,
		ffprobe: ffprobeBin,
		timeout: timeout,
		logger:  logger,
	}
}

// Normalize decodes inputPath into a mono 16 kHz PCM WAV written next to
// the input, and returns the output path. Ownership of the output file
// passes to the caller, which must guarantee its deletion. A decoder
// failure returns *ConversionError carrying the decoder's stderr; an
// exceeded time bound returns *TimeoutError.
func (n *Normalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_processed.wav"

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	args := []string{"-i", inputPath, "-ar", "16000", "-ac", "1", "-f", "wav", "-y", outputPath}
	cmd := exec.CommandContext(ctx, n.ffmpeg, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	n.logger.Debug("decoding upload",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
	)

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &TimeoutError{Limit: n.timeout}
	}
	if err != nil {
		return "", &ConversionError{Stderr: strings.TrimSpace(stderr.String())}
	}

	if err := n.verify(ctx, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// probeOutput is the subset of ffprobe's -show_streams JSON we consume.
type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// verify confirms the decoder actually produced mono 16 kHz PCM. A
// decoder that exits zero with malformed output is treated the same as
// one that failed outright.
func (n *Normalizer) verify(ctx context.Context, wavPath string) error {
	cmd := exec.CommandContext(ctx, n.ffprobe,
		"-v", "quiet", "-print_format", "json", "-show_streams", wavPath)

	out, err := cmd.Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Limit: n.timeout}
	}
	if err != nil {
		return &ConversionError{Stderr: "decoder produced unreadable output"}
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return &ConversionError{Stderr: "decoder produced unreadable output"}
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		if stream.CodecName == "pcm_s16le" && stream.SampleRate == CanonicalSampleRate && stream.Channels == 1 {
			return nil
		}
	}

	return &ConversionError{Stderr: "decoder produced non-canonical audio (want mono 16 kHz PCM)"}
}
