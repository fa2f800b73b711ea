package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/couchcryptid/modis-choropleth/internal/adapter/cache"
	"github.com/couchcryptid/modis-choropleth/internal/adapter/chart"
	httpadapter "github.com/couchcryptid/modis-choropleth/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/modis-choropleth/internal/adapter/kafka"
	"github.com/couchcryptid/modis-choropleth/internal/app"
	"github.com/couchcryptid/modis-choropleth/internal/config"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/couchcryptid/modis-choropleth/internal/observability"
	"github.com/couchcryptid/modis-choropleth/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := app.Load(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	metrics.ObservationsLoaded.Set(float64(ds.Engine.Store().Len()))
	metrics.DuplicateRows.Set(float64(ds.Engine.Store().Duplicates()))

	// Frame cache (disabled via FRAME_CACHE_SIZE=0).
	var renderer domain.Renderer = ds.Engine
	if cfg.FrameCacheSize > 0 {
		renderer = cache.NewCachedRenderer(ds.Engine, cfg.FrameCacheSize, metrics)
		logger.Info("frame cache enabled", "size", cfg.FrameCacheSize)
	}

	opts := session.Options{
		DefaultVariable:  cfg.DefaultVariable,
		AutoplayInterval: cfg.AutoplayInterval,
	}
	if ds.Boundaries != nil {
		opts.Locator = ds.Boundaries
	}

	// View publishing (feature-flagged via KAFKA_ENABLED).
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts.Sinks = append(opts.Sinks, publisher)
		logger.Info("kafka view publishing enabled", "topic", cfg.KafkaFrameTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka view publishing disabled")
	}

	s := session.New(ds.Engine, renderer, opts, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, s, chart.New(0, 0), logger)

	var wg sync.WaitGroup

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := publisher.Run(ctx); err != nil {
				logger.Error("view publisher error", "error", err)
			}
		}()
	}

	// Start session loop.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Run(ctx); err != nil {
			logger.Error("session error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
