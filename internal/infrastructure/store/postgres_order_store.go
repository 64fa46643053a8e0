package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/order-fulfillment/internal/apperr"
	"github.com/example/order-fulfillment/internal/domain/basket"
	"github.com/example/order-fulfillment/internal/domain/catalog"
	"github.com/example/order-fulfillment/internal/domain/order"
	"github.com/lib/pq"
)

// PostgresOrderStore serves baskets and catalog items and persists orders.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// GetBasketWithItems loads a basket and its items in insertion order
func (s *PostgresOrderStore) GetBasketWithItems(ctx context.Context, basketID int) (*basket.Basket, error) {
	b := &basket.Basket{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, buyer_id FROM baskets WHERE id = $1",
		basketID,
	).Scan(&b.ID, &b.BuyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, basket.ErrBasketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query basket %d: %w", basketID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, catalog_item_id, unit_price, quantity
		 FROM basket_items
		 WHERE basket_id = $1
		 ORDER BY id ASC`,
		basketID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query basket items for basket %d: %w", basketID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item basket.Item
		if err := rows.Scan(&item.ID, &item.CatalogItemID, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan basket item: %w", err)
		}
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return b, nil
}

// ListCatalogItems resolves all ids in a single query. Missing ids are simply
// absent from the result.
func (s *PostgresOrderStore) ListCatalogItems(ctx context.Context, ids []int) ([]catalog.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, picture_uri, price FROM catalog_items WHERE id = ANY($1)",
		pq.Array(keys),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var item catalog.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.PictureURI, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddOrder inserts the order row and every item row in one transaction.
func (s *PostgresOrderStore) AddOrder(ctx context.Context, o *order.Order) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w: %w", apperr.ErrPersistence, err)
	}
	defer tx.Rollback()

	var orderID int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (buyer_id, order_date, ship_street, ship_city, ship_state, ship_country, ship_zip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		o.BuyerID,
		o.OrderDate,
		o.ShipToAddress.Street,
		o.ShipToAddress.City,
		o.ShipToAddress.State,
		o.ShipToAddress.Country,
		o.ShipToAddress.ZipCode,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w: %w", apperr.ErrPersistence, err)
	}

	for _, item := range o.OrderItems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, catalog_item_id, product_name, picture_uri, unit_price, units)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID,
			item.ItemOrdered.CatalogItemID,
			item.ItemOrdered.ProductName,
			item.ItemOrdered.PictureURI,
			item.UnitPrice,
			item.Units,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert order item: %w: %w", apperr.ErrPersistence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit order: %w: %w", apperr.ErrPersistence, err)
	}
	return orderID, nil
}

// DeleteBasket removes a basket and, through the foreign key, its items.
func (s *PostgresOrderStore) DeleteBasket(ctx context.Context, basketID int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM baskets WHERE id = $1", basketID)
	if err != nil {
		return fmt.Errorf("failed to delete basket %d: %w", basketID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return basket.ErrBasketNotFound
	}
	return nil
}
