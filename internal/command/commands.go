package command

import "github.com/example/order-fulfillment/internal/domain/order"

// Checkout turns a buyer's basket into an order and dispatches it.
type Checkout struct {
	BasketID      int           `json:"basketId"`
	BuyerID       string        `json:"buyerId"`
	ShipToAddress order.Address `json:"shipToAddress"`
}
