package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aevon-lab/event-worker/internal/bus"
	"github.com/aevon-lab/event-worker/internal/core/config"
	"github.com/aevon-lab/event-worker/internal/core/storage/postgres"
	"github.com/aevon-lab/event-worker/internal/migrations"
	"github.com/aevon-lab/event-worker/internal/pipeline"
	"github.com/aevon-lab/event-worker/internal/server"
	"github.com/aevon-lab/event-worker/internal/telemetry"
	"github.com/aevon-lab/event-worker/internal/worker"
)

const tracerShutdownTimeout = 5 * time.Second

// Run wires the worker from cfg and blocks until ctx is cancelled or a
// component fails. Metrics are registered on reg and served from it.
func Run(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) error {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// 1. Tracing
	tracer, shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("[App] Failed to flush traces", "error", err)
		}
	}()

	// 2. Storage (PostgreSQL), waiting for it to come up
	store, err := postgres.Connect(ctx, cfg.Database.DSN(), postgres.ConnectOptions{
		Retry: postgres.RetryPolicy{
			MaxAttempts: cfg.Database.ConnectMaxAttempts,
			Interval:    cfg.Database.RetryInterval(),
		},
		MaxOpenConns: cfg.Consumer.Workers,
	})
	if err != nil {
		if ctx.Err() != nil {
			slog.Info("[App] Shutdown requested while waiting for the database")
			return nil
		}
		return fmt.Errorf("connect database: %w", err)
	}
	storeOwned := true
	defer func() {
		if storeOwned {
			_ = store.Close()
		}
	}()

	// 2.1. Schema
	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(store.DB()); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	if err := store.ValidateSchema(ctx); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	// 3. Metrics
	metrics, err := telemetry.NewMetrics(reg)
	if err != nil {
		return err
	}

	// 4. Bus
	subscriber, err := bus.NewKafkaSubscriber(bus.KafkaOptions{
		Brokers:        cfg.Kafka.BrokerList(),
		GroupID:        cfg.Kafka.GroupID,
		Topics:         cfg.Kafka.Topics,
		CommitInterval: cfg.Kafka.CommitIntervalDuration(),
		StartOffset:    cfg.Kafka.StartOffset,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		MaxPollRecords: cfg.Consumer.MaxPollRecords,
	})
	if err != nil {
		return fmt.Errorf("create kafka subscriber: %w", err)
	}

	processorOpts := []pipeline.ProcessorOption{pipeline.WithTracer(tracer)}
	if cfg.Kafka.DeadLetterTopic != "" {
		deadLetters := bus.NewDeadLetterPublisher(cfg.Kafka.BrokerList(), cfg.Kafka.DeadLetterTopic)
		defer func() {
			if err := deadLetters.Close(); err != nil {
				slog.Error("[App] Failed to close dead letter publisher", "error", err)
			}
		}()
		processorOpts = append(processorOpts, pipeline.WithDeadLetters(deadLetters))
	}

	// 5. Pipeline
	router := pipeline.NewRouter(
		pipeline.NewTaskCompletedHandler(store, metrics),
		pipeline.NewResourceEventHandler(store, metrics),
	)
	processor := pipeline.NewProcessor(router, metrics, processorOpts...)
	dispatcher := pipeline.NewDispatcher(processor, cfg.Consumer.Workers)

	// The worker closes the subscriber and the store when it stops.
	w := worker.New(subscriber, dispatcher, store, worker.Options{
		PollTimeout: cfg.Consumer.PollTimeoutDuration(),
	})
	storeOwned = false

	// 6. Metrics and health endpoint
	srv := server.New(cfg.Metrics.Addr(), store, telemetry.Handler(reg), cfg.Metrics.Path)

	// 7. Start
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return w.Run(gctx)
	})

	slog.Info("[App] Worker started",
		"topics", cfg.Kafka.Topics,
		"workers", dispatcher.Workers(),
		"dead_letter_topic", cfg.Kafka.DeadLetterTopic)

	err = g.Wait()
	slog.Info("[App] Shutdown complete", "state", w.State().String())
	return err
}
