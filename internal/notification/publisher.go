package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/rs/zerolog"
)

// MessagePublisher sends one message to the delivery order queue.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// DeliveryPublisher hands orders to the persistence worker through the queue.
type DeliveryPublisher struct {
	publisher MessagePublisher
	logger    zerolog.Logger
}

func NewDeliveryPublisher(publisher MessagePublisher, logger zerolog.Logger) *DeliveryPublisher {
	return &DeliveryPublisher{
		publisher: publisher,
		logger:    logger.With().Str("component", "delivery-publisher").Logger(),
	}
}

// PublishDeliveryOrder enqueues the order's delivery message. A send failure
// is returned immediately without retry.
func (p *DeliveryPublisher) PublishDeliveryOrder(ctx context.Context, o *order.Order) error {
	body, err := json.Marshal(order.NewDeliveryOrderMessage(o))
	if err != nil {
		return fmt.Errorf("failed to marshal delivery order message: %w", err)
	}

	if err := p.publisher.Publish(ctx, strconv.Itoa(o.ID), body); err != nil {
		return fmt.Errorf("publish delivery order %d: %w: %w", o.ID, apperr.ErrTransport, err)
	}

	p.logger.Info().Int("order_id", o.ID).Msg("delivery order queued")
	return nil
}
