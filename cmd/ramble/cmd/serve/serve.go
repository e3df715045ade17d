package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ramble/internal/api/server"
	"ramble/internal/api/v1/routes"
	"ramble/internal/api/v1/services"
	"ramble/internal/app/audio"
	"ramble/internal/app/cache"
	"ramble/internal/app/device"
	"ramble/internal/app/repository"
	"ramble/internal/app/repository/pg"
	"ramble/internal/app/repository/sqlite"
	"ramble/internal/app/storage/weights"
	"ramble/internal/app/transcription"
	"ramble/internal/app/util/files"
	"ramble/internal/app/whisper"
	"ramble/internal/config"
	"ramble/internal/logging"
	"ramble/internal/version"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription HTTP service",
	Long: `Run the transcription HTTP service.

Configuration comes from RAMBLE_* environment variables, with an
optional YAML override file named by RAMBLE_CONFIG. The service stops
gracefully on SIGINT and SIGTERM.`,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dev, err := device.Select(cfg.Device, cfg.CPUSlots)
	if err != nil {
		return err
	}
	logger.Info("compute device selected",
		zap.String("device", dev.String()),
		zap.String("name", dev.Name),
		zap.Int64("slots", dev.Slots()),
	)

	var store weights.Store = weights.NopStore{}
	if cfg.WeightsStore.Enabled() {
		store, err = weights.NewMinioStore(weights.Config{
			Endpoint:  cfg.WeightsStore.Endpoint,
			AccessKey: cfg.WeightsStore.AccessKey,
			SecretKey: cfg.WeightsStore.SecretKey,
			Bucket:    cfg.WeightsStore.Bucket,
			UseSSL:    cfg.WeightsStore.UseSSL,
		})
		if err != nil {
			return err
		}
		logger.Info("weights store enabled",
			zap.String("endpoint", cfg.WeightsStore.Endpoint),
			zap.String("bucket", cfg.WeightsStore.Bucket),
		)
	}

	if err := files.EnsureDir(cfg.ModelsDir); err != nil {
		return err
	}

	registry := whisper.NewRegistry(cfg.ModelsDir, cfg.WeightsBaseURL, dev, store, logger)
	engine := whisper.NewEngine(cfg.WorkerBin, dev, logger)
	normalizer := audio.NewNormalizer(cfg.FFmpegBin, cfg.FFprobeBin, cfg.ConvertTimeout, logger)

	var resultCache transcription.ResultCache
	if cfg.Cache.Addr != "" {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		}, logger)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		resultCache = redisCache
		logger.Info("result cache enabled", zap.String("addr", cfg.Cache.Addr))
	}

	dao, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer dao.Close()

	pipeline := transcription.NewService(normalizer, registry, engine, resultCache, dao, "", logger)

	container := &routes.ServiceContainer{
		Transcription: services.NewTranscriptionService(pipeline, logger),
		Catalog:       services.NewCatalogService(registry, cfg.DefaultModel, version.Version),
		History:       services.NewHistoryService(dao),
		Export:        services.NewExportService(dao),
	}

	srv := server.New(server.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Environment: cfg.Environment,
	}, container, logger)
	srv.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// openHistory opens the configured history store. Both drivers ensure
// their schema before first use.
func openHistory(cfg *config.Config, logger *zap.Logger) (repository.RecordDAO, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pg.NewPostgresDB(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("history store ready", zap.String("driver", "postgres"))
		return db, nil
	default:
		db, err := sqlite.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("history store ready",
			zap.String("driver", "sqlite"),
			zap.String("path", cfg.Database.Path),
		)
		return db, nil
	}
}
