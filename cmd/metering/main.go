package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai_metering/internal/config"
	"ai_metering/internal/credentials"
	"ai_metering/internal/metering"
	"ai_metering/internal/pricing"
	"ai_metering/internal/providers"
	"ai_metering/internal/queue"
	"ai_metering/internal/storage"
	"ai_metering/internal/utils"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger("metering", utils.ParseLogLevel(cfg.LogLevel))

	dbCfg := storage.DefaultDBConfig()
	dbCfg.URL = cfg.Database.URL
	dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	dbCfg.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime

	db, err := storage.NewDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := storage.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	enc, err := storage.NewEncryptionFromBase64(cfg.Credentials.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential encryption: %v", err)
	}

	table, err := loadPricing(ctx, cfg, db, logger)
	if err != nil {
		log.Fatalf("Failed to load pricing: %v", err)
	}

	registry := buildRegistry(cfg)

	queueCfg := queue.DefaultConfig("usage")
	queueCfg.BatchSize = cfg.Queue.BatchSize
	queueCfg.BatchTimeout = cfg.Queue.BatchTimeout
	queueCfg.UseRedis = cfg.Queue.UseRedis
	queueCfg.RedisAddr = cfg.Queue.RedisAddr
	queueCfg.RedisPassword = cfg.Queue.RedisPassword
	queueCfg.RedisDB = cfg.Queue.RedisDB

	usageQueue, err := buildQueue(queueCfg)
	if err != nil {
		log.Fatalf("Failed to create usage queue: %v", err)
	}

	worker := storage.NewUsageQueueWorker(usageQueue, db.NewUsageRepository(), queueCfg)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	worker.Start(workerCtx)

	cache := storage.NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL)
	resolver := credentials.NewResolver(cache, db.NewCredentialRepository(enc), registry, cfg.Provider.ProbeTimeout)

	service := metering.NewService(
		resolver,
		pricing.NewCalculator(table),
		metering.NewRecorder(worker),
		metering.NewAggregator(db.NewUsageRepository()),
	)

	// Startup sweep: report which provider credentials resolve so a
	// misconfigured deployment is visible in the logs immediately.
	for _, p := range registry.List() {
		if _, err := service.ResolveCredential(ctx, p.CredentialName()); err != nil {
			logger.Warn("Provider credential unavailable", "provider", p.ID(), "credential", p.CredentialName())
		} else {
			logger.Info("Provider credential resolved", "provider", p.ID())
		}
	}

	logger.Info("Metering service started",
		"queue", queueCfg.QueueName, "redis", cfg.Queue.UseRedis, "providers", len(registry.List()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	// Give the worker a moment to drain in-flight batches, then stop.
	// Events still queued after that are abandoned, recording is best
	// effort.
	time.Sleep(queueCfg.BatchTimeout)
	cancelWorker()
	if err := worker.Stop(); err != nil {
		logger.Error("Worker shutdown failed", "error", err)
	}
	if err := usageQueue.Close(); err != nil {
		logger.Error("Queue close failed", "error", err)
	}

	logger.Info("Metering service exited")
}

func loadPricing(ctx context.Context, cfg *config.Config, db *storage.DB, logger *utils.Logger) (*pricing.Table, error) {
	table := pricing.NewTable()

	if cfg.Pricing.FilePath != "" {
		if err := table.ApplyFile(cfg.Pricing.FilePath); err != nil {
			return nil, err
		}
		logger.Info("Applied pricing file", "path", cfg.Pricing.FilePath)
	}

	entries, err := db.NewPricingRepository().LoadEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		if err := table.ApplyEntries(entries); err != nil {
			return nil, err
		}
		logger.Info("Applied pricing overrides", "entries", len(entries))
	}

	table.Seal()
	return table, nil
}

func buildRegistry(cfg *config.Config) *providers.Registry {
	return providers.NewRegistry(
		providers.NewOpenAIProvider(cfg.Provider.OpenAIBaseURL),
		providers.NewImageGenProvider(cfg.Provider.ImageBaseURL),
		providers.NewAzureProvider(cfg.Provider.AzureEndpoint),
		providers.NewGoogleProvider(cfg.Provider.GoogleBaseURL),
	)
}

func buildQueue(cfg *queue.Config) (queue.Queue, error) {
	if cfg.UseRedis {
		return queue.NewRedisQueue(cfg)
	}
	return queue.NewMemoryQueue(cfg), nil
}
