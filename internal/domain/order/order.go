package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a shipping destination. It has no identity of its own.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// CatalogItemOrdered is a copy of the catalog item taken at order time, so later
// catalog edits never change historical orders.
type CatalogItemOrdered struct {
	CatalogItemID int    `json:"catalogItemId"`
	ProductName   string `json:"productName"`
	PictureURI    string `json:"pictureUri"`
}

type OrderItem struct {
	ItemOrdered CatalogItemOrdered `json:"itemOrdered"`
	UnitPrice   decimal.Decimal    `json:"unitPrice"`
	Units       int                `json:"units"`
}

// Subtotal is UnitPrice × Units.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Units)))
}

// Order is a value snapshot of a basket at checkout. Build it with NewOrder and
// treat it as read-only afterwards.
type Order struct {
	ID            int         `json:"id"`
	BuyerID       string      `json:"buyerId"`
	OrderDate     time.Time   `json:"orderDate"`
	ShipToAddress Address     `json:"shipToAddress"`
	OrderItems    []OrderItem `json:"orderItems"`
}

// NewOrder copies items so the order owns them exclusively.
func NewOrder(buyerID string, shipTo Address, items []OrderItem, orderDate time.Time) *Order {
	owned := make([]OrderItem, len(items))
	copy(owned, items)
	return &Order{
		BuyerID:       buyerID,
		OrderDate:     orderDate.UTC(),
		ShipToAddress: shipTo,
		OrderItems:    owned,
	}
}

// Total is derived from the items every time; it is never stored.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderItems {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Items returns a copy of the order items.
func (o *Order) Items() []OrderItem {
	items := make([]OrderItem, len(o.OrderItems))
	copy(items, o.OrderItems)
	return items
}
