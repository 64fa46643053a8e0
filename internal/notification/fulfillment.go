package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/rs/zerolog"
)

// FunctionsKeyHeader carries the pre-shared key expected by the fulfillment processor.
const FunctionsKeyHeader = "x-functions-key"

// FulfillmentNotifier posts orders to the external fulfillment processor.
// Delivery is at most once; callers own any retry policy.
type FulfillmentNotifier struct {
	client *http.Client
	url    string
	key    string
	logger zerolog.Logger
}

// NewFulfillmentNotifier creates a notifier. A nil client uses http.DefaultClient.
func NewFulfillmentNotifier(client *http.Client, url, key string, logger zerolog.Logger) *FulfillmentNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &FulfillmentNotifier{
		client: client,
		url:    url,
		key:    key,
		logger: logger.With().Str("component", "fulfillment-notifier").Logger(),
	}
}

// NotifyFulfillment sends one request describing the order. Any non-2xx
// status is returned as a transport failure.
func (n *FulfillmentNotifier) NotifyFulfillment(ctx context.Context, o *order.Order) error {
	body, err := json.Marshal(order.NewFulfillmentRequest(o))
	if err != nil {
		return fmt.Errorf("failed to marshal fulfillment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build fulfillment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(FunctionsKeyHeader, n.key)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("fulfillment request for order %d: %w: %w", o.ID, apperr.ErrTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fulfillment request for order %d: %w: unexpected status %d", o.ID, apperr.ErrTransport, resp.StatusCode)
	}

	n.logger.Info().Int("order_id", o.ID).Int("status", resp.StatusCode).Msg("fulfillment processor notified")
	return nil
}
