package order

import (
	"context"
	"fmt"
	"time"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/basket"
	"github.com/example/order-fulfillment/internal/domain/catalog"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyBasket        = fmt.Errorf("basket must have at least one item: %w", apperr.ErrInvalidState)
	ErrCatalogItemMissing = fmt.Errorf("catalog item referenced by basket does not exist: %w", apperr.ErrDataIntegrity)
)

type BasketRepository interface {
	// GetBasketWithItems returns basket.ErrBasketNotFound when no basket matches.
	GetBasketWithItems(ctx context.Context, basketID int) (*basket.Basket, error)
}

type CatalogRepository interface {
	ListCatalogItems(ctx context.Context, ids []int) ([]catalog.Item, error)
}

// Repository persists orders. AddOrder stores the order and all of its items
// atomically and returns the generated id.
type Repository interface {
	AddOrder(ctx context.Context, o *Order) (int, error)
}

type Service struct {
	baskets  BasketRepository
	catalog  CatalogRepository
	orders   Repository
	composer catalog.URIComposer
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(
	baskets BasketRepository,
	catalogRepo CatalogRepository,
	orders Repository,
	composer catalog.URIComposer,
	logger zerolog.Logger,
) *Service {
	return &Service{
		baskets:  baskets,
		catalog:  catalogRepo,
		orders:   orders,
		composer: composer,
		now:      time.Now,
		logger:   logger.With().Str("component", "order").Logger(),
	}
}

// CreateOrder turns the basket into a persisted order. The caller must make
// sure the same basket is not checked out concurrently.
func (s *Service) CreateOrder(ctx context.Context, basketID int, shipTo Address) (*Order, error) {
	b, err := s.baskets.GetBasketWithItems(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, basket.ErrBasketNotFound
	}
	if b.IsEmpty() {
		return nil, ErrEmptyBasket
	}

	ids := b.CatalogItemIDs()
	catalogItems, err := s.catalog.ListCatalogItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog items: %w", err)
	}
	byID := make(map[int]catalog.Item, len(catalogItems))
	for _, item := range catalogItems {
		byID[item.ID] = item
	}

	var missing []int
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: ids %v", ErrCatalogItemMissing, missing)
	}

	items := make([]OrderItem, 0, len(b.Items))
	for _, basketItem := range b.Items {
		catalogItem := byID[basketItem.CatalogItemID]
		items = append(items, OrderItem{
			ItemOrdered: CatalogItemOrdered{
				CatalogItemID: catalogItem.ID,
				ProductName:   catalogItem.Name,
				PictureURI:    s.composer.ComposePicURI(catalogItem.PictureURI),
			},
			UnitPrice: basketItem.UnitPrice,
			Units:     basketItem.Quantity,
		})
	}

	o := NewOrder(b.BuyerID, shipTo, items, s.now())

	id, err := s.orders.AddOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order for basket %d: %w", basketID, err)
	}
	o.ID = id

	s.logger.Info().
		Int("order_id", o.ID).
		Int("basket_id", basketID).
		Str("buyer_id", o.BuyerID).
		Int("items", len(o.OrderItems)).
		Str("total", o.Total().StringFixed(2)).
		Msg("order created")

	return o, nil
}
