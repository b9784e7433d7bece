package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/rainalert/radar-monitor/internal/adapter/capture"
	"github.com/rainalert/radar-monitor/internal/adapter/filestore"
	"github.com/rainalert/radar-monitor/internal/adapter/httpadapter"
	kafkaadapter "github.com/rainalert/radar-monitor/internal/adapter/kafka"
	"github.com/rainalert/radar-monitor/internal/classify"
	"github.com/rainalert/radar-monitor/internal/config"
	"github.com/rainalert/radar-monitor/internal/domain"
	"github.com/rainalert/radar-monitor/internal/observability"
	"github.com/rainalert/radar-monitor/internal/orchestrator"
	"github.com/rainalert/radar-monitor/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	opener, err := capture.NewOpener(capture.Config{
		Timeout:        cfg.CaptureTimeout,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		ScreenshotDir:  filepath.Join(cfg.DataDir, "screenshots"),
	}, clock, logger)
	if err != nil {
		logger.Error("failed to initialize capture", "error", err)
		os.Exit(1)
	}

	store, err := filestore.New(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to initialize result store", "error", err)
		os.Exit(1)
	}

	windows := classify.DefaultWindows()
	windows.SatMin = cfg.ClassifierSatMin
	windows.ValMin = cfg.ClassifierValMin
	classifier := classify.New(windows, domain.DefaultThresholds(), clock, logger)

	// Alert publishing is feature-flagged via KAFKA_PUBLISH_ENABLED.
	var publisher orchestrator.AlertPublisher
	var publisherCloser *kafkaadapter.Publisher
	if cfg.KafkaPublishEnabled {
		publisherCloser = kafkaadapter.NewPublisher(cfg, logger)
		publisher = publisherCloser
		metrics.PublishEnabled.Set(1)
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("alert publishing disabled")
	}

	orch := orchestrator.New(opener, classifier, store, publisher, logger, metrics, clock)

	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.RunOnce {
		if _, err := orch.Run(ctx, cfg.Providers); err != nil {
			logger.Error("analysis run failed", "error", err)
		}
	} else {
		runner := scheduler.New(orch, cfg.Providers, cfg.RunInterval, clock, logger)
		go func() {
			if err := runner.Run(ctx); err != nil {
				logger.Error("scheduler error", "error", err)
			}
		}()
		<-ctx.Done()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
