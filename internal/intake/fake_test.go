package intake

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/joao-fontenele/order-intake/internal/credentials"
	"github.com/joao-fontenele/order-intake/internal/domain"
)

type fakeStore struct {
	orderID    int64
	orderErr   error
	itemErr    error
	failItemAt int
	details    []domain.OrderDetailRow
	detailsErr error

	calls          []string
	orders         []domain.Order
	items          []domain.OrderItem
	authorizations []string
}

func newFakeStore(orderID int64) *fakeStore {
	return &fakeStore{orderID: orderID, failItemAt: -1}
}

func (f *fakeStore) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	f.calls = append(f.calls, "insert order")
	f.authorizations = append(f.authorizations, credentials.Authorization(ctx))
	if f.orderErr != nil {
		return 0, f.orderErr
	}
	f.orders = append(f.orders, order)
	return f.orderID, nil
}

func (f *fakeStore) InsertItem(ctx context.Context, item domain.OrderItem) error {
	f.calls = append(f.calls, "insert item")
	f.authorizations = append(f.authorizations, credentials.Authorization(ctx))
	if f.failItemAt == len(f.items) {
		return f.itemErr
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeStore) ReadOrderDetails(ctx context.Context) ([]domain.OrderDetailRow, error) {
	f.calls = append(f.calls, "read order details")
	f.authorizations = append(f.authorizations, credentials.Authorization(ctx))
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

func (f *fakeStore) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakePublisher struct {
	err    error
	keys   []string
	events []any
}

func (p *fakePublisher) Publish(_ context.Context, key string, event any) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store Store, publisher EventPublisher) *Service {
	t.Helper()
	svc, err := NewService(store, publisher, discardLogger())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func price(p float64) *float64 {
	return &p
}

func itemID(id int64) *domain.WholeNumber {
	n := domain.WholeNumber(id)
	return &n
}

func text(s string) *string {
	return &s
}
