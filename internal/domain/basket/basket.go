package basket

import (
	"fmt"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/shopspring/decimal"
)

var ErrBasketNotFound = fmt.Errorf("basket not found: %w", apperr.ErrNotFound)

// Item is one line of a basket. UnitPrice is the price captured when the
// item was added; it is not re-read from the catalog at checkout.
type Item struct {
	ID            int             `json:"id"`
	CatalogItemID int             `json:"catalogItemId"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
}

type Basket struct {
	ID      int    `json:"id"`
	BuyerID string `json:"buyerId"`
	Items   []Item `json:"items"`
}

// IsEmpty reports whether the basket has no items.
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// CatalogItemIDs returns the distinct catalog item ids in first-seen order.
func (b *Basket) CatalogItemIDs() []int {
	seen := make(map[int]struct{}, len(b.Items))
	ids := make([]int, 0, len(b.Items))
	for _, item := range b.Items {
		if _, ok := seen[item.CatalogItemID]; ok {
			continue
		}
		seen[item.CatalogItemID] = struct{}{}
		ids = append(ids, item.CatalogItemID)
	}
	return ids
}
