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

	"github.com/Sureka400/Ecolens-AI/internal/adapter/ecolens"
	httpadapter "github.com/Sureka400/Ecolens-AI/internal/adapter/http"
	kafkaadapter "github.com/Sureka400/Ecolens-AI/internal/adapter/kafka"
	"github.com/Sureka400/Ecolens-AI/internal/adapter/mapbox"
	"github.com/Sureka400/Ecolens-AI/internal/config"
	"github.com/Sureka400/Ecolens-AI/internal/dashboard"
	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/Sureka400/Ecolens-AI/internal/pipeline"
	"github.com/Sureka400/Ecolens-AI/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clk := clockwork.NewRealClock()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	api := ecolens.NewClient(cfg.APIURL, cfg.APITimeout, logger)
	backend := ecolens.NewCachedClient(api, cfg.PanelCacheTTL, cfg.PanelCacheSize, clk, metrics)
	logger.Info("ecolens backend configured", "url", cfg.APIURL, "timeout", cfg.APITimeout, "cache_ttl", cfg.PanelCacheTTL)

	ready := observability.Readiness{{Name: "backend", Checker: api}}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Activity events are only relayed when Kafka is enabled.
	var (
		events  dashboard.EventPublisher
		writer  *kafkaadapter.Writer
		relayWG sync.WaitGroup
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		relay := pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		events = relay
		ready = append(ready, observability.NamedCheck{Name: "relay", Checker: relay})

		relayWG.Add(1)
		go func() {
			defer relayWG.Done()
			if err := relay.Run(ctx); err != nil {
				logger.Error("relay error", "error", err)
			}
		}()
		logger.Info("activity events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaEventsTopic)
	}

	store := dashboard.NewStore(cfg.SessionCacheSize, dashboard.Config{
		Backend:         backend,
		Geocoder:        geocoder,
		Events:          events,
		Logger:          logger,
		Metrics:         metrics,
		Clock:           clk,
		DefaultLocation: cfg.DefaultLocation,
		ActionRate:      cfg.ActionRate,
		ActionBurst:     cfg.ActionBurst,
	})

	srv, err := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Options{
		Sessions: store,
		Views:    view.NewBuilder(view.NewIcons(metrics)),
		Reports:  api,
		Ready:    ready,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create http server", "error", err)
		os.Exit(1)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
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
	store.Close()

	// The relay drains on cancellation; wait for it before closing the writer.
	relayWG.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
