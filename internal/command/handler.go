package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/basket"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/example/order-fulfillment/internal/infrastructure/lock"
	"github.com/rs/zerolog"
)

var (
	ErrCheckoutInProgress = fmt.Errorf("checkout already in progress for basket: %w", apperr.ErrInvalidState)
	ErrBasketNotOwned     = fmt.Errorf("basket belongs to another buyer: %w", apperr.ErrForbidden)
)

type BasketStore interface {
	GetBasketWithItems(ctx context.Context, basketID int) (*basket.Basket, error)
	DeleteBasket(ctx context.Context, basketID int) error
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, basketID int, shipTo order.Address) (*order.Order, error)
}

type FulfillmentNotifier interface {
	NotifyFulfillment(ctx context.Context, o *order.Order) error
}

type DeliveryPublisher interface {
	PublishDeliveryOrder(ctx context.Context, o *order.Order) error
}

// Unlocker releases a held lock.
type Unlocker interface {
	Release(ctx context.Context) error
}

// Locker takes an exclusive lock on key. It returns lock.ErrLockHeld when
// someone else holds it.
type Locker interface {
	Acquire(ctx context.Context, key string) (Unlocker, error)
}

type redisLocker struct {
	locker *lock.RedisLocker
}

// NewRedisLocker adapts a lock.RedisLocker to Locker.
func NewRedisLocker(l *lock.RedisLocker) Locker {
	return redisLocker{locker: l}
}

func (r redisLocker) Acquire(ctx context.Context, key string) (Unlocker, error) {
	lk, err := r.locker.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return lk, nil
}

// DispatchError reports an order that was created but not fully handed to
// the downstream systems.
type DispatchError struct {
	OrderID int
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("order %d created but dispatch failed: %v", e.OrderID, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

type Handler struct {
	baskets   BasketStore
	orders    OrderCreator
	notifier  FulfillmentNotifier
	publisher DeliveryPublisher
	locker    Locker
	logger    zerolog.Logger
}

func NewHandler(
	baskets BasketStore,
	orders OrderCreator,
	notifier FulfillmentNotifier,
	publisher DeliveryPublisher,
	locker Locker,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		baskets:   baskets,
		orders:    orders,
		notifier:  notifier,
		publisher: publisher,
		locker:    locker,
		logger:    logger.With().Str("component", "checkout").Logger(),
	}
}

// LockKey is the Redis key guarding checkout of one basket.
func LockKey(basketID int) string {
	return "checkout:basket:" + strconv.Itoa(basketID)
}

// Checkout creates the order under a per-basket lock, then notifies the
// fulfillment processor and queues the delivery order. Both dispatches are
// attempted even if the first fails; failures come back as *DispatchError.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) (*order.Order, error) {
	lk, err := h.locker.Acquire(ctx, LockKey(cmd.BasketID))
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			return nil, ErrCheckoutInProgress
		}
		return nil, err
	}
	defer func() {
		if err := lk.Release(context.WithoutCancel(ctx)); err != nil {
			h.logger.Warn().Err(err).Int("basket_id", cmd.BasketID).Msg("failed to release checkout lock")
		}
	}()

	b, err := h.baskets.GetBasketWithItems(ctx, cmd.BasketID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, basket.ErrBasketNotFound
	}
	if b.BuyerID != cmd.BuyerID {
		return nil, ErrBasketNotOwned
	}

	o, err := h.orders.CreateOrder(ctx, cmd.BasketID, cmd.ShipToAddress)
	if err != nil {
		return nil, err
	}

	log := h.logger.With().Int("order_id", o.ID).Int("basket_id", cmd.BasketID).Logger()

	var dispatchErrs []error
	if err := h.notifier.NotifyFulfillment(ctx, o); err != nil {
		log.Error().Err(err).Msg("fulfillment notification failed")
		dispatchErrs = append(dispatchErrs, err)
	}
	if err := h.publisher.PublishDeliveryOrder(ctx, o); err != nil {
		log.Error().Err(err).Msg("delivery order publish failed")
		dispatchErrs = append(dispatchErrs, err)
	}

	if err := h.baskets.DeleteBasket(ctx, cmd.BasketID); err != nil {
		log.Warn().Err(err).Msg("failed to delete checked out basket")
	}

	if len(dispatchErrs) > 0 {
		return o, &DispatchError{OrderID: o.ID, Err: errors.Join(dispatchErrs...)}
	}

	log.Info().Str("total", o.Total().String()).Msg("checkout completed")
	return o, nil
}
