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
	"github.com/example/order-fulfillment/internal/delivery"
	"github.com/example/order-fulfillment/internal/infrastructure/store"
	"github.com/example/order-fulfillment/internal/logging"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logging.New("delivery-order-processor", logging.Options{})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logging.New("delivery-order-processor", logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if err := cfg.ValidateDelivery(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := store.LoadAWSConfig(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS configuration")
	}
	documents := store.NewDynamoDocumentStore(store.NewDynamoClient(awsCfg, cfg.DynamoDBEndpoint), cfg.DeliveryOrdersTable)

	processor := delivery.NewProcessor(documents, logger)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           delivery.NewRouter(delivery.NewHandler(processor), cfg.FunctionsKey, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("table", cfg.DeliveryOrdersTable).Msg("delivery order processor started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}
