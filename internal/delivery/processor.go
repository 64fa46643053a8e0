package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingShipTo     = fmt.Errorf("%w: shipToAddress is required", apperr.ErrMalformedInput)
	ErrMissingOrderItems = fmt.Errorf("%w: orderItems is required", apperr.ErrMalformedInput)
	ErrMissingPrice      = fmt.Errorf("%w: finalPrice is required", apperr.ErrMalformedInput)
)

// Request is the accepted delivery order body. Total is read as an alias of
// FinalPrice so fulfillment requests can be ingested unchanged.
type Request struct {
	ShipToAddress *order.Address    `json:"shipToAddress"`
	OrderItems    []order.OrderItem `json:"orderItems"`
	FinalPrice    *decimal.Decimal  `json:"finalPrice"`
	Total         *decimal.Decimal  `json:"total"`
}

// Document is the record written to the document store.
type Document struct {
	ID            string            `json:"id"`
	ShipToAddress order.Address     `json:"shipToAddress"`
	OrderItems    []order.OrderItem `json:"orderItems"`
	FinalPrice    decimal.Decimal   `json:"finalPrice"`
}

// DocumentWriter persists one document.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *Document) error
}

type Processor struct {
	writer DocumentWriter
	logger zerolog.Logger
	newID  func() string
}

func NewProcessor(writer DocumentWriter, logger zerolog.Logger) *Processor {
	return &Processor{
		writer: writer,
		logger: logger.With().Str("component", "delivery-order-processor").Logger(),
		newID:  uuid.NewString,
	}
}

// ParseRequest decodes body and checks the required fields.
func ParseRequest(body []byte) (*Request, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty request body", apperr.ErrMalformedInput)
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrMalformedInput, err)
	}

	switch {
	case req.ShipToAddress == nil:
		return nil, ErrMissingShipTo
	case req.OrderItems == nil:
		return nil, ErrMissingOrderItems
	case req.FinalPrice == nil && req.Total == nil:
		return nil, ErrMissingPrice
	}
	return &req, nil
}

// Price returns FinalPrice, falling back to Total.
func (r *Request) Price() decimal.Decimal {
	if r.FinalPrice != nil {
		return *r.FinalPrice
	}
	if r.Total != nil {
		return *r.Total
	}
	return decimal.Zero
}

// Ingest validates body and writes it as a new document with a fresh id.
func (p *Processor) Ingest(ctx context.Context, body []byte) (*Document, error) {
	req, err := ParseRequest(body)
	if err != nil {
		p.logger.Warn().Err(err).Msg("rejected delivery order")
		return nil, err
	}

	doc := &Document{
		ID:            p.newID(),
		ShipToAddress: *req.ShipToAddress,
		OrderItems:    req.OrderItems,
		FinalPrice:    req.Price(),
	}

	if err := p.writer.WriteDocument(ctx, doc); err != nil {
		if !errors.Is(err, apperr.ErrPersistence) {
			err = fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
		}
		p.logger.Error().Err(err).Str("document_id", doc.ID).Msg("failed to save delivery order")
		return nil, err
	}

	p.logger.Info().
		Str("document_id", doc.ID).
		Int("items", len(doc.OrderItems)).
		Str("final_price", doc.FinalPrice.String()).
		Msg("delivery order saved")
	return doc, nil
}
