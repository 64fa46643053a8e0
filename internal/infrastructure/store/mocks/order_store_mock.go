package mocks

import (
	"context"
	"sync"

	"github.com/example/order-fulfillment/internal/domain/basket"
	"github.com/example/order-fulfillment/internal/domain/catalog"
	"github.com/example/order-fulfillment/internal/domain/order"
)

// MockOrderStore is an in-memory basket, catalog and order repository for testing
type MockOrderStore struct {
	mu      sync.Mutex
	baskets map[int]*basket.Basket
	catalog map[int]catalog.Item
	orders  map[int]*order.Order
	nextID  int

	// For tracking calls in tests
	GetBasketCalls    []int
	ListCatalogCalls  [][]int
	AddOrderCalls     []*order.Order
	DeleteBasketCalls []int

	GetBasketErr    error
	ListCatalogErr  error
	AddOrderErr     error
	DeleteBasketErr error
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		baskets: make(map[int]*basket.Basket),
		catalog: make(map[int]catalog.Item),
		orders:  make(map[int]*order.Order),
		nextID:  1,
	}
}

// AddBasket stores a basket for testing
func (m *MockOrderStore) AddBasket(b *basket.Basket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets[b.ID] = b
}

// AddCatalogItem stores a catalog item for testing
func (m *MockOrderStore) AddCatalogItem(item catalog.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog[item.ID] = item
}

func (m *MockOrderStore) GetBasketWithItems(ctx context.Context, basketID int) (*basket.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetBasketCalls = append(m.GetBasketCalls, basketID)
	if m.GetBasketErr != nil {
		return nil, m.GetBasketErr
	}
	b, ok := m.baskets[basketID]
	if !ok {
		return nil, basket.ErrBasketNotFound
	}
	clone := *b
	clone.Items = append([]basket.Item(nil), b.Items...)
	return &clone, nil
}

func (m *MockOrderStore) ListCatalogItems(ctx context.Context, ids []int) ([]catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCatalogCalls = append(m.ListCatalogCalls, append([]int(nil), ids...))
	if m.ListCatalogErr != nil {
		return nil, m.ListCatalogErr
	}
	var items []catalog.Item
	for _, id := range ids {
		if item, ok := m.catalog[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *MockOrderStore) AddOrder(ctx context.Context, o *order.Order) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddOrderCalls = append(m.AddOrderCalls, o)
	if m.AddOrderErr != nil {
		return 0, m.AddOrderErr
	}
	id := m.nextID
	m.nextID++
	m.orders[id] = o
	return id, nil
}

func (m *MockOrderStore) DeleteBasket(ctx context.Context, basketID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteBasketCalls = append(m.DeleteBasketCalls, basketID)
	if m.DeleteBasketErr != nil {
		return m.DeleteBasketErr
	}
	if _, ok := m.baskets[basketID]; !ok {
		return basket.ErrBasketNotFound
	}
	delete(m.baskets, basketID)
	return nil
}

// Orders returns the number of persisted orders
func (m *MockOrderStore) Orders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}
