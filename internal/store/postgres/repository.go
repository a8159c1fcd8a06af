// Package postgres implements the intake store directly against PostgreSQL.
// It expects the schema created by the migrations directory.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, shipping_address, recipient_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, order.UserID, order.ShippingAddress, order.RecipientName).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *OrderRepository) InsertItem(ctx context.Context, item domain.OrderItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_items (order_id, item_id, quantity)
		VALUES ($1, $2, $3)
	`, item.OrderID, item.ItemID, item.Quantity)
	return err
}

func (r *OrderRepository) ReadOrderDetails(ctx context.Context) ([]domain.OrderDetailRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, order_items
		FROM order_details
		ORDER BY order_id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var details []domain.OrderDetailRow
	for rows.Next() {
		var row domain.OrderDetailRow
		var items []byte
		if err := rows.Scan(&row.OrderID, &items); err != nil {
			return nil, err
		}
		if items != nil {
			if err := json.Unmarshal(items, &row.OrderItems); err != nil {
				return nil, fmt.Errorf("decode items of order %d: %w", row.OrderID, err)
			}
		}
		details = append(details, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}
