package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ramble/internal/app/device"
	"ramble/internal/app/metrics"
	"ramble/internal/app/storage/weights"
	"ramble/internal/app/util/files"
)

// DefaultWeightsBaseURL is the public upstream the registry downloads
// ggml weights from when neither the local dir nor the blob store has
// them.
const DefaultWeightsBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Handle is a loaded model bound to the process-wide compute device.
// Shared by every request using the same identifier and never evicted
// once loaded.
type Handle struct {
	ID       string
	Path     string
	Device   device.Device
	LoadedAt time.Time
}

// Registry owns the loaded model handles. Unknown identifiers are
// rejected before any I/O, loads are lazy and collapse concurrent
// requests for the same identifier into a single flight, and a failed
// load leaves nothing behind so a later call can retry.
type Registry struct {
	dir     string
	baseURL string
	dev     device.Device
	store   weights.Store
	client  *http.Client
	logger  *zap.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	handles map[string]*Handle
}

// NewRegistry creates a registry materializing weights under modelsDir.
// An empty baseURL falls back to DefaultWeightsBaseURL; a nil store
// disables the blob store tier.
func NewRegistry(modelsDir, baseURL string, dev device.Device, store weights.Store, logger *zap.Logger) *Registry {
	if baseURL == "" {
		baseURL = DefaultWeightsBaseURL
	}
	if store == nil {
		store = weights.NopStore{}
	}
	return &Registry{
		dir:     modelsDir,
		baseURL: baseURL,
		dev:     dev,
		store:   store,
		client:  &http.Client{},
		logger:  logger,
		handles: make(map[string]*Handle),
	}
}

// Device returns the compute device every handle is bound to.
func (r *Registry) Device() device.Device {
	return r.dev
}

// Loaded returns the identifiers of the currently resident models,
// sorted for stable output.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := lo.Keys(r.handles)
	sort.Strings(ids)
	return ids
}

// Acquire returns the shared handle for id, loading it on first use.
// Repeated calls return the same handle instance. Concurrent calls for
// a not-yet-loaded identifier wait on one load and share its outcome.
func (r *Registry) Acquire(ctx context.Context, id string) (*Handle, error) {
	if !IsKnownModel(id) {
		return nil, &InvalidModelError{ID: id}
	}

	r.mu.RLock()
	h, ok := r.handles[id]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	// The load must not die with whichever request happened to arrive
	// first, so it is detached from the caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)

	v, err, _ := r.group.Do(id, func() (interface{}, error) {
		r.mu.RLock()
		h, ok := r.handles[id]
		r.mu.RUnlock()
		if ok {
			return h, nil
		}

		loaded, err := r.load(loadCtx, id)
		if err != nil {
			metrics.RecordModelLoad(id, false)
			return nil, err
		}
		metrics.RecordModelLoad(id, true)

		r.mu.Lock()
		r.handles[id] = loaded
		r.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

func (r *Registry) load(ctx context.Context, id string) (*Handle, error) {
	start := time.Now()
	path := filepath.Join(r.dir, WeightFile(id))

	if !files.Exists(path) {
		if err := r.materialize(ctx, id, path); err != nil {
			return nil, &ModelLoadError{ID: id, Err: err}
		}
	}

	sum, err := files.SHA256(path)
	if err != nil {
		return nil, &ModelLoadError{ID: id, Err: err}
	}
	size, err := files.Size(path)
	if err != nil {
		return nil, &ModelLoadError{ID: id, Err: err}
	}

	r.logger.Info("model loaded",
		zap.String("model", id),
		zap.String("device", r.dev.String()),
		zap.String("sha256", sum),
		zap.Int64("size_bytes", size),
		zap.Duration("took", time.Since(start)),
	)

	return &Handle{ID: id, Path: path, Device: r.dev, LoadedAt: time.Now()}, nil
}

// materialize brings the weights file into the local models dir: blob
// store first, upstream download second. A fresh download populates the
// store best effort.
func (r *Registry) materialize(ctx context.Context, id, path string) error {
	if err := files.EnsureDir(r.dir); err != nil {
		return err
	}

	object := WeightFile(id)

	err := r.store.Fetch(ctx, object, path)
	if err == nil {
		r.logger.Info("weights restored from blob store",
			zap.String("model", id), zap.String("object", object))
		return nil
	}
	if !errors.Is(err, weights.ErrNotFound) {
		r.logger.Warn("blob store fetch failed, falling back to upstream",
			zap.String("model", id), zap.Error(err))
	}

	if err := r.download(ctx, object, path); err != nil {
		return err
	}

	if err := r.store.Put(ctx, object, path); err != nil {
		r.logger.Warn("failed to populate blob store",
			zap.String("object", object), zap.Error(err))
	}
	return nil
}

func (r *Registry) download(ctx context.Context, object, destPath string) error {
	url := r.baseURL + "/" + object
	r.logger.Info("downloading weights", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("weights download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s downloading %s", resp.Status, url)
	}

	// Download to a side file first so a failed transfer never leaves a
	// truncated weights file behind.
	tmpPath := destPath + ".download"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("weights download interrupted: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, destPath)
}
