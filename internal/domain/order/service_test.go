package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/basket"
	"github.com/example/order-fulfillment/internal/domain/catalog"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/example/order-fulfillment/internal/infrastructure/store/mocks"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shipTo = order.Address{
	Street:  "123 Main St.",
	City:    "Kent",
	State:   "OH",
	Country: "United States",
	ZipCode: "44240",
}

func newTestOrderService(baseURL string) (*order.Service, *mocks.MockOrderStore) {
	repo := mocks.NewMockOrderStore()
	svc := order.NewService(repo, repo, repo, catalog.NewURIComposer(baseURL), zerolog.Nop())
	return svc, repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ============================================
// CreateOrder Tests
// ============================================

func TestService_CreateOrder_SingleItem(t *testing.T) {
	service, repo := newTestOrderService("")
	ctx := context.Background()

	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget", PictureURI: "/images/1.png", Price: dec("12.00")})
	repo.AddBasket(&basket.Basket{
		ID:      5,
		BuyerID: "buyer-1",
		Items:   []basket.Item{{ID: 1, CatalogItemID: 1, UnitPrice: dec("10.00"), Quantity: 2}},
	})

	o, err := service.CreateOrder(ctx, 5, shipTo)

	require.NoError(t, err)
	assert.Equal(t, 1, o.ID)
	assert.Equal(t, "buyer-1", o.BuyerID)
	assert.Equal(t, shipTo, o.ShipToAddress)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, 2, o.OrderItems[0].Units)
	assert.True(t, dec("10.00").Equal(o.OrderItems[0].UnitPrice))
	assert.Equal(t, "Widget", o.OrderItems[0].ItemOrdered.ProductName)
	assert.True(t, dec("20.00").Equal(o.Total()), "total was %s", o.Total())
	assert.False(t, o.OrderDate.IsZero())

	assert.Len(t, repo.AddOrderCalls, 1)
}

func TestService_CreateOrder_TotalMatchesBasket(t *testing.T) {
	service, repo := newTestOrderService("")
	ctx := context.Background()

	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget", Price: dec("1")})
	repo.AddCatalogItem(catalog.Item{ID: 2, Name: "Gadget", Price: dec("1")})
	items := []basket.Item{
		{ID: 1, CatalogItemID: 1, UnitPrice: dec("19.99"), Quantity: 3},
		{ID: 2, CatalogItemID: 2, UnitPrice: dec("0.10"), Quantity: 7},
		{ID: 3, CatalogItemID: 1, UnitPrice: dec("18.50"), Quantity: 1},
	}
	repo.AddBasket(&basket.Basket{ID: 9, BuyerID: "buyer-2", Items: items})

	o, err := service.CreateOrder(ctx, 9, shipTo)

	require.NoError(t, err)
	assert.Len(t, o.OrderItems, len(items))

	expected := decimal.Zero
	for _, item := range items {
		expected = expected.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, expected.Equal(o.Total()), "expected %s, got %s", expected, o.Total())

	// one batched lookup with distinct ids
	require.Len(t, repo.ListCatalogCalls, 1)
	assert.Equal(t, []int{1, 2}, repo.ListCatalogCalls[0])
}

func TestService_CreateOrder_UsesBasketPriceNotCatalogPrice(t *testing.T) {
	service, repo := newTestOrderService("")
	ctx := context.Background()

	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget", Price: dec("99.00")})
	repo.AddBasket(&basket.Basket{
		ID:      1,
		BuyerID: "buyer-1",
		Items:   []basket.Item{{ID: 1, CatalogItemID: 1, UnitPrice: dec("10.00"), Quantity: 1}},
	})

	o, err := service.CreateOrder(ctx, 1, shipTo)

	require.NoError(t, err)
	assert.True(t, dec("10.00").Equal(o.OrderItems[0].UnitPrice))
}

func TestService_CreateOrder_ComposesPictureURI(t *testing.T) {
	service, repo := newTestOrderService("https://cdn.example.com")
	ctx := context.Background()

	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget", PictureURI: catalog.PictureBaseURLPlaceholder + "/images/1.png"})
	repo.AddBasket(&basket.Basket{
		ID:      1,
		BuyerID: "buyer-1",
		Items:   []basket.Item{{ID: 1, CatalogItemID: 1, UnitPrice: dec("1"), Quantity: 1}},
	})

	o, err := service.CreateOrder(ctx, 1, shipTo)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/1.png", o.OrderItems[0].ItemOrdered.PictureURI)
}

func TestService_CreateOrder_SnapshotIndependentOfCatalog(t *testing.T) {
	service, repo := newTestOrderService("")
	ctx := context.Background()

	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget"})
	repo.AddBasket(&basket.Basket{
		ID:      1,
		BuyerID: "buyer-1",
		Items:   []basket.Item{{ID: 1, CatalogItemID: 1, UnitPrice: dec("1"), Quantity: 1}},
	})

	o, err := service.CreateOrder(ctx, 1, shipTo)
	require.NoError(t, err)

	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Renamed Widget"})

	assert.Equal(t, "Widget", o.OrderItems[0].ItemOrdered.ProductName)
}

func TestService_CreateOrder_BasketNotFound(t *testing.T) {
	service, repo := newTestOrderService("")

	o, err := service.CreateOrder(context.Background(), 404, shipTo)

	assert.Nil(t, o)
	assert.ErrorIs(t, err, basket.ErrBasketNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, repo.AddOrderCalls)
}

func TestService_CreateOrder_EmptyBasket(t *testing.T) {
	service, repo := newTestOrderService("")
	repo.AddBasket(&basket.Basket{ID: 3, BuyerID: "buyer-1"})

	o, err := service.CreateOrder(context.Background(), 3, shipTo)

	assert.Nil(t, o)
	assert.ErrorIs(t, err, order.ErrEmptyBasket)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Empty(t, repo.ListCatalogCalls)
	assert.Empty(t, repo.AddOrderCalls)
}

func TestService_CreateOrder_MissingCatalogItem(t *testing.T) {
	service, repo := newTestOrderService("")
	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget"})
	repo.AddBasket(&basket.Basket{
		ID:      1,
		BuyerID: "buyer-1",
		Items: []basket.Item{
			{ID: 1, CatalogItemID: 1, UnitPrice: dec("1"), Quantity: 1},
			{ID: 2, CatalogItemID: 2, UnitPrice: dec("1"), Quantity: 1},
		},
	})

	o, err := service.CreateOrder(context.Background(), 1, shipTo)

	assert.Nil(t, o)
	assert.ErrorIs(t, err, order.ErrCatalogItemMissing)
	assert.ErrorIs(t, err, apperr.ErrDataIntegrity)
	assert.Contains(t, err.Error(), "[2]")
	assert.Empty(t, repo.AddOrderCalls)
}

// ============================================
// Error Path Tests
// ============================================

func TestService_CreateOrder_CatalogError(t *testing.T) {
	service, repo := newTestOrderService("")
	repo.AddBasket(&basket.Basket{
		ID:      1,
		BuyerID: "buyer-1",
		Items:   []basket.Item{{ID: 1, CatalogItemID: 1, UnitPrice: dec("1"), Quantity: 1}},
	})
	repo.ListCatalogErr = errors.New("database error")

	o, err := service.CreateOrder(context.Background(), 1, shipTo)

	assert.Nil(t, o)
	assert.Error(t, err)
	assert.Empty(t, repo.AddOrderCalls)
}

func TestService_CreateOrder_PersistError(t *testing.T) {
	service, repo := newTestOrderService("")
	repo.AddCatalogItem(catalog.Item{ID: 1, Name: "Widget"})
	repo.AddBasket(&basket.Basket{
		ID:      1,
		BuyerID: "buyer-1",
		Items:   []basket.Item{{ID: 1, CatalogItemID: 1, UnitPrice: dec("1"), Quantity: 1}},
	})
	repo.AddOrderErr = errors.New("database error")

	o, err := service.CreateOrder(context.Background(), 1, shipTo)

	assert.Nil(t, o)
	assert.Error(t, err)
	assert.Zero(t, repo.Orders())
}
