package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/order-fulfillment/internal/api"
	"github.com/example/order-fulfillment/internal/auth"
	"github.com/example/order-fulfillment/internal/command"
	"github.com/example/order-fulfillment/internal/config"
	"github.com/example/order-fulfillment/internal/domain/catalog"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/example/order-fulfillment/internal/infrastructure/kafka"
	"github.com/example/order-fulfillment/internal/infrastructure/lock"
	"github.com/example/order-fulfillment/internal/infrastructure/store"
	"github.com/example/order-fulfillment/internal/logging"
	"github.com/example/order-fulfillment/internal/notification"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	tokenIssuer     = "order-fulfillment"
	tokenExpiry     = 15 * time.Minute
	checkoutLockTTL = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	logger := logging.New("api", logging.Options{})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logging.New("api", logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if err := cfg.ValidateAPI(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}
	logger.Info().Msg("connected to PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to Redis")
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.OrderRequestsTopic)
	defer producer.Close()

	orderStore := store.NewPostgresOrderStore(db)
	orderSvc := order.NewService(orderStore, orderStore, orderStore, catalog.NewURIComposer(cfg.CatalogBaseURL), logger)

	notifier := notification.NewFulfillmentNotifier(
		&http.Client{Timeout: 10 * time.Second},
		cfg.FulfillmentProcessorURL,
		cfg.FulfillmentProcessorKey,
		logger,
	)
	publisher := notification.NewDeliveryPublisher(producer, logger)

	cmdHandler := command.NewHandler(
		orderStore,
		orderSvc,
		notifier,
		publisher,
		command.NewRedisLocker(lock.NewRedisLocker(redisClient, checkoutLockTTL)),
		logger,
	)

	jwtService := auth.NewJWTService(cfg.JWTSecret, tokenIssuer, tokenExpiry)
	router := api.NewRouter(api.NewHandlers(cmdHandler, logging.Component(logger, "http")), jwtService, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.HTTPAddr).
			Strs("kafka_brokers", cfg.KafkaBrokers).
			Str("topic", cfg.OrderRequestsTopic).
			Msg("checkout API started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}
