package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so tests see defaults
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"RAMBLE_HOST", "RAMBLE_PORT", "RAMBLE_ENV", "RAMBLE_CONFIG",
		"RAMBLE_WORKER_BIN", "RAMBLE_FFMPEG_BIN", "RAMBLE_FFPROBE_BIN",
		"RAMBLE_MODELS_DIR", "RAMBLE_DEFAULT_MODEL", "RAMBLE_DEVICE",
		"RAMBLE_CPU_SLOTS", "RAMBLE_CONVERT_TIMEOUT", "RAMBLE_WEIGHTS_BASE_URL",
		"RAMBLE_WEIGHTS_STORE", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY",
		"MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RAMBLE_CACHE_TTL",
		"RAMBLE_DB_DRIVER", "RAMBLE_DB_PATH", "DATABASE_URL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "whisper-worker", cfg.WorkerBin)
	assert.Equal(t, "ffmpeg", cfg.FFmpegBin)
	assert.Equal(t, "data/models", cfg.ModelsDir)
	assert.Equal(t, "tiny", cfg.DefaultModel)
	assert.Equal(t, "auto", cfg.Device)
	assert.Equal(t, 1, cfg.CPUSlots)
	assert.Equal(t, 30*time.Second, cfg.ConvertTimeout)
	assert.False(t, cfg.WeightsStore.Enabled())
	assert.Empty(t, cfg.Cache.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/ramble.db", cfg.Database.Path)
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAMBLE_PORT", "9999")
	t.Setenv("RAMBLE_DEFAULT_MODEL", "base")
	t.Setenv("RAMBLE_CPU_SLOTS", "4")
	t.Setenv("RAMBLE_CONVERT_TIMEOUT", "45s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "base", cfg.DefaultModel)
	assert.Equal(t, 4, cfg.CPUSlots)
	assert.Equal(t, 45*time.Second, cfg.ConvertTimeout)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, 2, cfg.Cache.DB)
}

func TestLoadAppliesConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAMBLE_PORT", "9000")

	path := filepath.Join(t.TempDir(), "ramble.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"8100\"\n"+
			"default_model: small\n"+
			"convert_timeout: 1m\n"+
			"database:\n"+
			"  driver: postgres\n",
	), 0o644))
	t.Setenv("RAMBLE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	// File wins over environment, untouched keys keep their env values.
	assert.Equal(t, "8100", cfg.Port)
	assert.Equal(t, "small", cfg.DefaultModel)
	assert.Equal(t, time.Minute, cfg.ConvertTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "0.0.0.0", cfg.Host)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAMBLE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresURLFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "ramble")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "ramble_prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t,
		"host=db.internal port=5432 user=ramble password=secret dbname=ramble_prod sslmode=disable",
		cfg.Database.URL)
}

func TestPostgresURLPrefersDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://ramble@db/ramble")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://ramble@db/ramble", cfg.Database.URL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad port", map[string]string{"RAMBLE_PORT": "http"}, "RAMBLE_PORT"},
		{"unknown model", map[string]string{"RAMBLE_DEFAULT_MODEL": "huge"}, "RAMBLE_DEFAULT_MODEL"},
		{"unknown device", map[string]string{"RAMBLE_DEVICE": "tpu"}, "RAMBLE_DEVICE"},
		{"zero slots", map[string]string{"RAMBLE_CPU_SLOTS": "0"}, "RAMBLE_CPU_SLOTS"},
		{"bad slots", map[string]string{"RAMBLE_CPU_SLOTS": "many"}, "RAMBLE_CPU_SLOTS"},
		{"bad timeout", map[string]string{"RAMBLE_CONVERT_TIMEOUT": "soon"}, "RAMBLE_CONVERT_TIMEOUT"},
		{"unknown driver", map[string]string{"RAMBLE_DB_DRIVER": "mysql"}, "RAMBLE_DB_DRIVER"},
		{"unknown weights backend", map[string]string{"RAMBLE_WEIGHTS_STORE": "s3"}, "RAMBLE_WEIGHTS_STORE"},
		{"minio without keys", map[string]string{"RAMBLE_WEIGHTS_STORE": "minio"}, "MINIO_ACCESS_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEnvMissingFileIsFine(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	assert.NoError(t, LoadEnv())
}

func TestLoadEnvReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RAMBLE_TEST_SENTINEL=from-file\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("RAMBLE_TEST_SENTINEL", "")
	os.Unsetenv("RAMBLE_TEST_SENTINEL")
	require.NoError(t, LoadEnv())
	assert.Equal(t, "from-file", os.Getenv("RAMBLE_TEST_SENTINEL"))
}
