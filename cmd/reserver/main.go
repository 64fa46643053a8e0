package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/order-fulfillment/internal/config"
	"github.com/example/order-fulfillment/internal/email"
	"github.com/example/order-fulfillment/internal/infrastructure/kafka"
	"github.com/example/order-fulfillment/internal/infrastructure/store"
	"github.com/example/order-fulfillment/internal/logging"
	"github.com/example/order-fulfillment/internal/reserver"
)

func main() {
	logger := logging.New("order-items-reserver", logging.Options{})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logging.New("order-items-reserver", logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if err := cfg.ValidateReserver(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := store.LoadAWSConfig(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS configuration")
	}
	blobs := store.NewS3BlobStore(store.NewS3Client(awsCfg, cfg.BlobEndpoint), cfg.BlobBucket)
	escalator := email.NewService(&http.Client{Timeout: 10 * time.Second}, cfg.EmailSenderURL)

	worker := reserver.NewWorker(blobs, escalator, logger, reserver.WithRetryDelay(cfg.WorkerRetryDelay))

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.OrderRequestsTopic, cfg.ConsumerGroup, logger)
	defer consumer.Close()

	logger.Info().
		Strs("kafka_brokers", cfg.KafkaBrokers).
		Str("topic", cfg.OrderRequestsTopic).
		Str("group", cfg.ConsumerGroup).
		Str("bucket", cfg.BlobBucket).
		Dur("retry_delay", cfg.WorkerRetryDelay).
		Msg("order items reserver started")

	if err := consumer.Consume(ctx, worker.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("shutting down")
}
