package postgrest

import (
	"context"
	"errors"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

const (
	ordersTable       = "orders"
	orderItemsTable   = "order_items"
	orderDetailsTable = "order_details"
)

var errNoOrderReturned = errors.New("order insert returned no row")

// Store implements intake.Store on top of a PostgREST endpoint.
type Store struct {
	client *Client
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := s.client.Insert(ctx, ordersTable, order, "id", &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, errNoOrderReturned
	}
	return rows[0].ID, nil
}

func (s *Store) InsertItem(ctx context.Context, item domain.OrderItem) error {
	return s.client.Insert(ctx, orderItemsTable, item, "", nil)
}

func (s *Store) ReadOrderDetails(ctx context.Context) ([]domain.OrderDetailRow, error) {
	var rows []domain.OrderDetailRow
	if err := s.client.Select(ctx, orderDetailsTable, "*", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
