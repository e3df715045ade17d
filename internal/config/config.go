// Package config assembles the service configuration from built-in
// defaults, environment variables and an optional YAML override file
// named by RAMBLE_CONFIG.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the serve command needs to construct the
// transcription pipeline and the HTTP server.
type Config struct {
	Host        string
	Port        string
	Environment string

	WorkerBin      string
	FFmpegBin      string
	FFprobeBin     string
	ModelsDir      string
	DefaultModel   string
	Device         string
	CPUSlots       int
	ConvertTimeout time.Duration
	WeightsBaseURL string

	WeightsStore WeightsStore
	Cache        Cache
	Database     Database
}

// WeightsStore selects the optional blob store model weights are
// mirrored through. Backend "off" disables it.
type WeightsStore struct {
	Backend   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether a blob store backs the model registry.
func (w WeightsStore) Enabled() bool {
	return w.Backend == "minio"
}

// Cache holds redis connection settings. An empty Addr disables
// result caching.
type Cache struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Database selects the history store. Driver "sqlite" uses Path,
// "postgres" uses URL.
type Database struct {
	Driver string
	Path   string
	URL    string
}

// Load resolves the configuration. Environment variables override the
// defaults, the RAMBLE_CONFIG file overrides both. The result is
// validated before it is returned.
func Load() (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if path := os.Getenv("RAMBLE_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	cpuSlots, err := envInt("RAMBLE_CPU_SLOTS", 1)
	if err != nil {
		return nil, err
	}
	convertTimeout, err := envDuration("RAMBLE_CONVERT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("RAMBLE_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	minioSSL, err := envBool("MINIO_USE_SSL", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Host:        getEnvOrDefault("RAMBLE_HOST", "0.0.0.0"),
		Port:        getEnvOrDefault("RAMBLE_PORT", "8090"),
		Environment: getEnvOrDefault("RAMBLE_ENV", "development"),

		WorkerBin:      getEnvOrDefault("RAMBLE_WORKER_BIN", "whisper-worker"),
		FFmpegBin:      getEnvOrDefault("RAMBLE_FFMPEG_BIN", "ffmpeg"),
		FFprobeBin:     getEnvOrDefault("RAMBLE_FFPROBE_BIN", "ffprobe"),
		ModelsDir:      getEnvOrDefault("RAMBLE_MODELS_DIR", "data/models"),
		DefaultModel:   getEnvOrDefault("RAMBLE_DEFAULT_MODEL", "tiny"),
		Device:         getEnvOrDefault("RAMBLE_DEVICE", "auto"),
		CPUSlots:       cpuSlots,
		ConvertTimeout: convertTimeout,
		WeightsBaseURL: os.Getenv("RAMBLE_WEIGHTS_BASE_URL"),

		WeightsStore: WeightsStore{
			Backend:   getEnvOrDefault("RAMBLE_WEIGHTS_STORE", "off"),
			Endpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnvOrDefault("MINIO_BUCKET", "ramble-models"),
			UseSSL:    minioSSL,
		},
		Cache: Cache{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       cacheDB,
			TTL:      cacheTTL,
		},
		Database: Database{
			Driver: getEnvOrDefault("RAMBLE_DB_DRIVER", "sqlite"),
			Path:   getEnvOrDefault("RAMBLE_DB_PATH", "data/ramble.db"),
			URL:    postgresURL(),
		},
	}, nil
}

// postgresURL prefers a full DATABASE_URL and otherwise assembles a
// DSN from the individual DB_* parts.
func postgresURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")
	dbname := getEnvOrDefault("DB_NAME", "ramble")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// fileConfig mirrors Config with optional fields so an override file
// only touches the keys it names. Durations are strings in "30s" form.
type fileConfig struct {
	Host        *string `yaml:"host"`
	Port        *string `yaml:"port"`
	Environment *string `yaml:"environment"`

	WorkerBin      *string `yaml:"worker_bin"`
	FFmpegBin      *string `yaml:"ffmpeg_bin"`
	FFprobeBin     *string `yaml:"ffprobe_bin"`
	ModelsDir      *string `yaml:"models_dir"`
	DefaultModel   *string `yaml:"default_model"`
	Device         *string `yaml:"device"`
	CPUSlots       *int    `yaml:"cpu_slots"`
	ConvertTimeout *string `yaml:"convert_timeout"`
	WeightsBaseURL *string `yaml:"weights_base_url"`

	WeightsStore *fileWeightsStore `yaml:"weights_store"`
	Cache        *fileCache        `yaml:"cache"`
	Database     *fileDatabase     `yaml:"database"`
}

type fileWeightsStore struct {
	Backend   *string `yaml:"backend"`
	Endpoint  *string `yaml:"endpoint"`
	AccessKey *string `yaml:"access_key"`
	SecretKey *string `yaml:"secret_key"`
	Bucket    *string `yaml:"bucket"`
	UseSSL    *bool   `yaml:"use_ssl"`
}

type fileCache struct {
	Addr     *string `yaml:"addr"`
	Password *string `yaml:"password"`
	DB       *int    `yaml:"db"`
	TTL      *string `yaml:"ttl"`
}

type fileDatabase struct {
	Driver *string `yaml:"driver"`
	Path   *string `yaml:"path"`
	URL    *string `yaml:"url"`
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	setString(&c.Host, file.Host)
	setString(&c.Port, file.Port)
	setString(&c.Environment, file.Environment)
	setString(&c.WorkerBin, file.WorkerBin)
	setString(&c.FFmpegBin, file.FFmpegBin)
	setString(&c.FFprobeBin, file.FFprobeBin)
	setString(&c.ModelsDir, file.ModelsDir)
	setString(&c.DefaultModel, file.DefaultModel)
	setString(&c.Device, file.Device)
	setString(&c.WeightsBaseURL, file.WeightsBaseURL)
	if file.CPUSlots != nil {
		c.CPUSlots = *file.CPUSlots
	}
	if err := setDuration(&c.ConvertTimeout, file.ConvertTimeout, "convert_timeout"); err != nil {
		return err
	}

	if ws := file.WeightsStore; ws != nil {
		setString(&c.WeightsStore.Backend, ws.Backend)
		setString(&c.WeightsStore.Endpoint, ws.Endpoint)
		setString(&c.WeightsStore.AccessKey, ws.AccessKey)
		setString(&c.WeightsStore.SecretKey, ws.SecretKey)
		setString(&c.WeightsStore.Bucket, ws.Bucket)
		if ws.UseSSL != nil {
			c.WeightsStore.UseSSL = *ws.UseSSL
		}
	}
	if cache := file.Cache; cache != nil {
		setString(&c.Cache.Addr, cache.Addr)
		setString(&c.Cache.Password, cache.Password)
		if cache.DB != nil {
			c.Cache.DB = *cache.DB
		}
		if err := setDuration(&c.Cache.TTL, cache.TTL, "cache.ttl"); err != nil {
			return err
		}
	}
	if db := file.Database; db != nil {
		setString(&c.Database.Driver, db.Driver)
		setString(&c.Database.Path, db.Path)
		setString(&c.Database.URL, db.URL)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, name string) error {
	if src == nil {
		return nil
	}
	parsed, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %q is not a duration", name, *src)
	}
	*dst = parsed
	return nil
}

// getEnvOrDefault returns the environment variable value or the
// fallback when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return value, nil
}

func envBool(key string, fallback bool) (bool, error) {
	switch raw := os.Getenv(key); raw {
	case "":
		return fallback, nil
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s: %q is not a boolean", key, raw)
	}
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, raw)
	}
	return value, nil
}
