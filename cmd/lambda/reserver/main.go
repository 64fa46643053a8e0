package main

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/order-fulfillment/internal/config"
	"github.com/example/order-fulfillment/internal/email"
	"github.com/example/order-fulfillment/internal/infrastructure/msk"
	"github.com/example/order-fulfillment/internal/infrastructure/store"
	"github.com/example/order-fulfillment/internal/logging"
	"github.com/example/order-fulfillment/internal/reserver"
	"github.com/rs/zerolog"
)

var (
	worker *reserver.Worker
	logger zerolog.Logger
)

func init() {
	logger = logging.New("order-items-reserver", logging.Options{})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logging.New("order-items-reserver", logging.Options{Level: cfg.LogLevel})
	if err := cfg.ValidateReserver(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	awsCfg, err := store.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	blobs := store.NewS3BlobStore(store.NewS3Client(awsCfg, cfg.BlobEndpoint), cfg.BlobBucket)
	escalator := email.NewService(&http.Client{Timeout: 10 * time.Second}, cfg.EmailSenderURL)
	worker = reserver.NewWorker(blobs, escalator, logger, reserver.WithRetryDelay(cfg.WorkerRetryDelay))

	logger.Info().Str("bucket", cfg.BlobBucket).Msg("lambda reserver initialized")
}

func handler(ctx context.Context, event events.KafkaEvent) error {
	handled, err := msk.Dispatch(ctx, event, worker.HandleMessage)
	if err != nil {
		logger.Error().Err(err).Int("handled", handled).Msg("batch interrupted, records will be redelivered")
		return err
	}
	logger.Info().Int("records", handled).Msg("batch processed")
	return nil
}

func main() {
	lambda.Start(handler)
}
