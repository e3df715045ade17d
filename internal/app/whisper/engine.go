package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"ramble/internal/app/device"
	"ramble/internal/app/metrics"
)

// workerOutput is the JSON document the recognition worker prints on
// stdout.
type workerOutput struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Engine executes the external recognition worker against normalized
// audio. Inference never runs twice concurrently on the same device
// slot: a single accelerator exposes exactly one slot, CPU deployments
// get as many as the device descriptor allows.
type Engine struct {
	bin    string
	dev    device.Device
	slots  *semaphore.Weighted
	logger *zap.Logger
}

// NewEngine creates an engine around the worker binary. An empty binary
// path falls back to whisper-worker on PATH.
func NewEngine(workerBin string, dev device.Device, logger *zap.Logger) *Engine {
	if workerBin == "" {
		workerBin = "whisper-worker"
	}
	return &Engine{
		bin:    workerBin,
		dev:    dev,
		slots:  semaphore.NewWeighted(dev.Slots()),
		logger: logger,
	}
}

// Recognize runs one inference call for the handle over a normalized
// WAV file and returns the raw timed segments plus the detected
// language. The call blocks while all device slots are busy; ctx
// cancellation abandons the wait but never interrupts inference that
// already started. There is no per-call inference timeout.
func (e *Engine) Recognize(ctx context.Context, handle *Handle, wavPath string, opts Options) (Result, error) {
	waitStart := time.Now()
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer e.slots.Release(1)
	metrics.ObserveQueueWait(time.Since(waitStart).Seconds())

	args := []string{"-m", handle.Path, "-d", e.dev.String(), "-t", string(opts.Task)}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}
	if opts.FP16 {
		args = append(args, "--fp16")
	}
	args = append(args, "-f", wavPath)

	e.logger.Info("running recognition",
		zap.String("model", handle.ID),
		zap.String("task", string(opts.Task)),
		zap.String("command", e.bin+" "+strings.Join(args, " ")),
	)

	cmd := exec.Command(e.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runStart := time.Now()
	err := cmd.Run()
	metrics.ObserveInference(handle.ID, time.Since(runStart).Seconds())

	if err != nil {
		return Result{}, &RecognitionError{Err: err, Stderr: trimStderr(stderr.String())}
	}

	var out workerOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return Result{}, &RecognitionError{
			Err:    fmt.Errorf("malformed worker output: %w", err),
			Stderr: trimStderr(stderr.String()),
		}
	}

	return Result{Language: out.Language, Segments: out.Segments}, nil
}

// trimStderr keeps diagnostics readable in logs without dropping the
// interesting tail end of long worker output.
func trimStderr(s string) string {
	s = strings.TrimSpace(s)
	const max = 4096
	if len(s) > max {
		return "..." + s[len(s)-max:]
	}
	return s
}
