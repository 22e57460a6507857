package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/api/middleware"
	"github.com/feral-file/ff-ugc/internal/api/server"
	"github.com/feral-file/ff-ugc/internal/api/shared/executor"
	"github.com/feral-file/ff-ugc/internal/bookmark"
	"github.com/feral-file/ff-ugc/internal/config"
	"github.com/feral-file/ff-ugc/internal/identity"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/messaging"
	"github.com/feral-file/ff-ugc/internal/metrics"
	"github.com/feral-file/ff-ugc/internal/providers/jetstream"
	"github.com/feral-file/ff-ugc/internal/seen"
	"github.com/feral-file/ff-ugc/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ugc-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File UGC API")

	// Connect to database
	db, err := store.Open(store.OpenConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN(),
		SQLitePath:      cfg.Database.SQLitePath,
		Debug:           cfg.Debug,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	if cfg.Database.Driver == store.DriverSQLite {
		// Local development runs without a separate migrate step
		if err := store.Migrate(ctx, db); err != nil {
			logger.FatalCtx(ctx, "Failed to migrate database", zap.Error(err))
		}
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewStore(db)
	clock := adapter.NewClock()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Event bus. Without NATS, events are dropped and caches are only invalidated locally.
	publisher := messaging.NewNoopPublisher()
	var subscriber messaging.Subscriber
	if cfg.NATS.URL != "" {
		jsConfig := jetstream.Config{
			URL:                       cfg.NATS.URL,
			StreamName:                cfg.NATS.StreamName,
			SubjectPrefix:             cfg.NATS.SubjectPrefix,
			MaxReconnects:             cfg.NATS.MaxReconnects,
			ReconnectWait:             cfg.NATS.ReconnectWait,
			ConnectionName:            cfg.NATS.ConnectionName,
			ConsumerName:              cfg.NATS.ConsumerName,
			ConsumerInactiveThreshold: cfg.NATS.ConsumerInactiveThreshold,
		}
		natsJS := adapter.NewNatsJetStream()

		publisher, err = jetstream.NewPublisher(ctx, jsConfig, natsJS)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err))
		}

		subscriber, err = jetstream.NewSubscriber(jsConfig, natsJS)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS subscriber", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL), zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, events will not be published")
	}
	defer publisher.Close()

	// Domain components
	tracker := seen.NewTracker(dataStore, clock, seen.Config{
		CacheSize: cfg.Cache.UnseenCountSize,
		CacheTTL:  cfg.Cache.UnseenCountTTL,
	}, m)
	exec := executor.NewExecutor(
		dataStore,
		identity.NewCoordinator(dataStore, clock),
		bookmark.NewService(dataStore, clock),
		tracker,
		publisher,
		clock,
		m,
		executor.RetryConfig{
			MaxRetries:      cfg.LinkRetry.MaxRetries,
			InitialInterval: cfg.LinkRetry.InitialInterval,
			MaxInterval:     cfg.LinkRetry.MaxInterval,
		},
	)

	errCh := make(chan error, 2)

	// Invalidate cached unseen counts on changes made by other instances
	if subscriber != nil {
		defer subscriber.Close()
		go func() {
			if err := subscriber.Subscribe(ctx, seen.InvalidateOnEvent(tracker)); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("subscriber stopped: %w", err)
			}
		}()
	}

	srv := server.New(server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
		},
	}, exec, m, registry)

	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
