package weights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound is returned by Fetch when the store has no such object.
var ErrNotFound = errors.New("weights object not found")

// Store is the external blob store holding model weights, keyed by
// object name. The registry reads through it before downloading from
// upstream, and populates it after a fresh download.
type Store interface {
	// Fetch downloads object into destPath. Returns ErrNotFound when
	// the object does not exist in the store.
	Fetch(ctx context.Context, object string, destPath string) error
	// Put uploads the file at srcPath under the given object name.
	Put(ctx context.Context, object string, srcPath string) error
}

// Config holds blob store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore implements Store backed by a MinIO (or S3 compatible)
// bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured bucket, creating it when it
// does not exist yet.
func NewMinioStore(cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Fetch(ctx context.Context, object string, destPath string) error {
	err := s.client.FGetObject(ctx, s.bucket, object, destPath, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch %s from store: %w", object, err)
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, object string, srcPath string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, object, srcPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", object, err)
	}
	return nil
}

// NopStore is used when no blob store is configured. Every fetch
// misses and every put succeeds silently.
type NopStore struct{}

func (NopStore) Fetch(ctx context.Context, object string, destPath string) error {
	return ErrNotFound
}

func (NopStore) Put(ctx context.Context, object string, srcPath string) error {
	return nil
}

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	FetchErr error
	PutErr   error

	FetchCalls int
	PutCalls   int
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string][]byte)}
}

// Seed places an object into the store without counting as a Put call.
func (m *MockStore) Seed(object string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[object] = data
}

// Has reports whether the store holds the object.
func (m *MockStore) Has(object string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[object]
	return ok
}

func (m *MockStore) Fetch(ctx context.Context, object string, destPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	if m.FetchErr != nil {
		return m.FetchErr
	}
	data, ok := m.objects[object]
	if !ok {
		return ErrNotFound
	}
	return os.WriteFile(destPath, data, 0o644)
}

func (m *MockStore) Put(ctx context.Context, object string, srcPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	m.objects[object] = data
	return nil
}
