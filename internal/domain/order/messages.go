package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryOrderMessage is the queue payload handed to the persistence worker.
type DeliveryOrderMessage struct {
	ShipToAddress Address         `json:"shipToAddress"`
	OrderItems    []OrderItem     `json:"orderItems"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

// FulfillmentRequest is the body sent to the fulfillment processor.
type FulfillmentRequest struct {
	BuyerID       string          `json:"buyerId"`
	OrderDate     time.Time       `json:"orderDate"`
	ShipToAddress Address         `json:"shipToAddress"`
	OrderItems    []OrderItem     `json:"orderItems"`
	Total         decimal.Decimal `json:"total"`
}

func NewDeliveryOrderMessage(o *Order) DeliveryOrderMessage {
	return DeliveryOrderMessage{
		ShipToAddress: o.ShipToAddress,
		OrderItems:    o.Items(),
		FinalPrice:    o.Total(),
	}
}

func NewFulfillmentRequest(o *Order) FulfillmentRequest {
	return FulfillmentRequest{
		BuyerID:       o.BuyerID,
		OrderDate:     o.OrderDate,
		ShipToAddress: o.ShipToAddress,
		OrderItems:    o.Items(),
		Total:         o.Total(),
	}
}
