// Package testutil provides in-memory fakes for the pipeline
// interfaces plus shared fixtures. The fakes are safe for concurrent
// use and expose call counters for assertions.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"ramble/internal/app/device"
	"ramble/internal/app/model"
	"ramble/internal/app/repository"
	"ramble/internal/app/transcription"
	"ramble/internal/app/whisper"
)

// MockNormalizer implements transcription.Normalizer. On success it
// writes a small sibling WAV file next to the input, like the real
// decoder does.
type MockNormalizer struct {
	mu sync.Mutex

	Err error

	Calls     int
	LastInput string
}

func (m *MockNormalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastInput = inputPath

	if m.Err != nil {
		return "", m.Err
	}

	out := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_processed.wav"
	if err := os.WriteFile(out, []byte("RIFF"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// MockModelSource implements transcription.ModelSource with memoized
// handles per identifier.
type MockModelSource struct {
	mu sync.Mutex

	Dev device.Device
	Err error

	AcquireCalls []string
	handles      map[string]*whisper.Handle
}

func (m *MockModelSource) Acquire(ctx context.Context, id string) (*whisper.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AcquireCalls = append(m.AcquireCalls, id)

	if !whisper.IsKnownModel(id) {
		return nil, &whisper.InvalidModelError{ID: id}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	if m.handles == nil {
		m.handles = make(map[string]*whisper.Handle)
	}
	if h, ok := m.handles[id]; ok {
		return h, nil
	}
	h := &whisper.Handle{ID: id, Path: filepath.Join("models", whisper.WeightFile(id)), Device: m.Dev}
	m.handles[id] = h
	return h, nil
}

func (m *MockModelSource) Device() device.Device {
	return m.Dev
}

// MockRecognizer implements transcription.Recognizer returning a fixed
// result.
type MockRecognizer struct {
	mu sync.Mutex

	Result whisper.Result
	Err    error

	Calls    int
	LastWav  string
	LastOpts whisper.Options
}

func (m *MockRecognizer) Recognize(ctx context.Context, handle *whisper.Handle, wavPath string, opts whisper.Options) (whisper.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastWav = wavPath
	m.LastOpts = opts

	if m.Err != nil {
		return whisper.Result{}, m.Err
	}
	return m.Result, nil
}

// MockResultCache implements transcription.ResultCache in memory.
type MockResultCache struct {
	mu sync.Mutex

	GetErr error
	SetErr error

	GetCalls int
	SetCalls int

	items map[string]transcription.Transcript
}

func NewMockResultCache() *MockResultCache {
	return &MockResultCache{items: make(map[string]transcription.Transcript)}
}

// Seed places a transcript into the cache without counting as a Set.
func (m *MockResultCache) Seed(key string, tr transcription.Transcript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = tr
}

// Has reports whether the cache holds the key.
func (m *MockResultCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func (m *MockResultCache) Get(ctx context.Context, key string) (*transcription.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	tr, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return &tr, nil
}

func (m *MockResultCache) Set(ctx context.Context, key string, tr *transcription.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.items[key] = *tr
	return nil
}

// MockRecordDAO implements repository.RecordDAO in memory.
type MockRecordDAO struct {
	mu sync.Mutex

	SaveErr  error
	GetErr   error
	ListErr  error
	StatsErr error

	Records []model.Record
}

func (m *MockRecordDAO) Close() error { return nil }

func (m *MockRecordDAO) Save(rec *model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	rec.ID = int64(len(m.Records) + 1)
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MockRecordDAO) GetByID(id int64) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for i := range m.Records {
		if m.Records[i].ID == id {
			rec := m.Records[i]
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRecordDAO) List(q repository.Query) ([]model.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}

	matched := make([]model.Record, 0)
	for _, rec := range m.Records {
		if q.Model != "" && rec.Model != q.Model {
			continue
		}
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	limit, offset := q.Window()
	if offset >= len(matched) {
		return []model.Record{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *MockRecordDAO) Stats() (*repository.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StatsErr != nil {
		return nil, m.StatsErr
	}

	st := &repository.Stats{ByModel: make(map[string]int64)}
	for _, rec := range m.Records {
		st.TotalRequests++
		if rec.Status == model.StatusSuccess {
			st.Succeeded++
		} else {
			st.Failed++
		}
		st.AudioSeconds += rec.DurationSeconds
		st.ByModel[rec.Model]++
	}
	return st, nil
}
