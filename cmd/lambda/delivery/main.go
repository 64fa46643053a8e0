package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/order-fulfillment/internal/config"
	"github.com/example/order-fulfillment/internal/delivery"
	"github.com/example/order-fulfillment/internal/infrastructure/store"
	"github.com/example/order-fulfillment/internal/logging"
)

var (
	processor    *delivery.Processor
	functionsKey string
)

func init() {
	logger := logging.New("delivery-order-processor", logging.Options{})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logging.New("delivery-order-processor", logging.Options{Level: cfg.LogLevel})
	if err := cfg.ValidateDelivery(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	awsCfg, err := store.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	documents := store.NewDynamoDocumentStore(store.NewDynamoClient(awsCfg, cfg.DynamoDBEndpoint), cfg.DeliveryOrdersTable)
	processor = delivery.NewProcessor(documents, logger)
	functionsKey = cfg.FunctionsKey

	logger.Info().Str("table", cfg.DeliveryOrdersTable).Msg("lambda delivery processor initialized")
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return processor.HandleAPIGateway(ctx, functionsKey, req), nil
}

func main() {
	lambda.Start(handler)
}
