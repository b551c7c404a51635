package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soosb/aquafeed/internal/api/rest"
	"github.com/soosb/aquafeed/internal/cache"
	"github.com/soosb/aquafeed/internal/config"
	"github.com/soosb/aquafeed/internal/ingest/lenex"
	"github.com/soosb/aquafeed/internal/ingest/musz"
	"github.com/soosb/aquafeed/internal/logger"
	"github.com/soosb/aquafeed/internal/metrics"
	"github.com/soosb/aquafeed/internal/pipeline"
	"github.com/soosb/aquafeed/internal/store"
	"github.com/soosb/aquafeed/internal/store/repository"
	"go.uber.org/zap"
)

const serviceName = "aquafeed"

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting", zap.String("service", serviceName))

	db, err := store.NewDatabase(cfg.DatabaseDSN, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		zlog.Fatal("migrations failed", zap.Error(err))
	}

	var birthYears musz.BirthYears
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, birth-year lookups will not be cached", zap.Error(err))
		} else {
			defer redisCache.Close()
			birthYears = redisCache
		}
	}

	m := metrics.NewDefault()
	repo := repository.New(db)

	importer := lenex.NewImporter(repo, m, zlog)
	client := musz.NewClient(cfg.MuszBaseURL, cfg.FetchTimeout, m, zlog)
	scraper := musz.NewScraper(client, repo, birthYears, zlog)
	runner := pipeline.New(repo, importer, scraper, cfg.LenexDir, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error("pipeline run failed", zap.Error(err))
		}
	}()

	server := rest.NewServer(cfg.RESTPort, repo, zlog)
	go func() {
		zlog.Info("api listening", zap.String("port", cfg.RESTPort))
		if err := server.Start(); err != nil && ctx.Err() == nil {
			zlog.Fatal("api server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zlog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("api shutdown", zap.Error(err))
	}
}
