package intake

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

var tracer = otel.Tracer("intake")

// Store is the persistence collaborator: the orders table, the order_items
// table and the read-only order_details view.
type Store interface {
	InsertOrder(ctx context.Context, order domain.Order) (int64, error)
	InsertItem(ctx context.Context, item domain.OrderItem) error
	ReadOrderDetails(ctx context.Context) ([]domain.OrderDetailRow, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store        Store
	publisher    EventPublisher
	logger       *slog.Logger
	itemsWritten metric.Int64Counter
}

// NewService builds the intake pipeline. publisher may be nil.
func NewService(store Store, publisher EventPublisher, logger *slog.Logger) (*Service, error) {
	itemsWritten, err := otel.Meter("intake").Int64Counter("intake.items.written",
		metric.WithDescription("Order items inserted into the store"),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:        store,
		publisher:    publisher,
		logger:       logger,
		itemsWritten: itemsWritten,
	}, nil
}

// Submit writes the order and its items, then returns the totals of every
// order visible to the caller. The first failing step aborts the rest; writes
// that already happened are kept. An incomplete request is rejected with
// *MalformedRequestError before the store is contacted.
func (s *Service) Submit(ctx context.Context, req *domain.SubmitRequest) ([]domain.OrderTotal, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	order := req.Order.Order()
	orderID, err := s.writeOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	items, err := s.writeItems(ctx, orderID, req.Items)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, orderID, order.UserID, items)

	rows, err := s.readDetails(ctx)
	if err != nil {
		return nil, err
	}

	return Aggregate(rows), nil
}

func (s *Service) writeOrder(ctx context.Context, order domain.Order) (int64, error) {
	ctx, span := tracer.Start(ctx, "insert order")
	defer span.End()

	id, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		return 0, s.fail(span, "insert order", err)
	}

	span.SetAttributes(attribute.Int64("order.id", id))
	s.logger.Debug("order inserted", "order_id", id, "user_id", order.UserID)
	return id, nil
}

func (s *Service) writeItems(ctx context.Context, orderID int64, entries []domain.ItemEntry) ([]domain.OrderItem, error) {
	ctx, span := tracer.Start(ctx, "insert order items",
		trace.WithAttributes(
			attribute.Int64("order.id", orderID),
			attribute.Int("order.items", len(entries)),
		),
	)
	defer span.End()

	written := make([]domain.OrderItem, 0, len(entries))
	for _, entry := range entries {
		item := domain.OrderItem{
			OrderID:  orderID,
			ItemID:   int64(*entry.ItemID),
			Quantity: int(entry.Quantity),
		}
		if err := s.store.InsertItem(ctx, item); err != nil {
			s.logger.Warn("item insert failed, earlier items are kept",
				"order_id", orderID, "item_id", item.ItemID, "written", len(written))
			return written, s.fail(span, "insert item", err)
		}
		written = append(written, item)
		s.itemsWritten.Add(ctx, 1)
	}

	return written, nil
}

func (s *Service) readDetails(ctx context.Context) ([]domain.OrderDetailRow, error) {
	ctx, span := tracer.Start(ctx, "read order details")
	defer span.End()

	rows, err := s.store.ReadOrderDetails(ctx)
	if err != nil {
		return nil, s.fail(span, "read order details", err)
	}

	span.SetAttributes(attribute.Int("order_details.rows", len(rows)))
	return rows, nil
}

func (s *Service) publish(ctx context.Context, orderID int64, userID string, items []domain.OrderItem) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderSubmittedEvent{
		EventID:   uuid.New().String(),
		OrderID:   orderID,
		UserID:    userID,
		Items:     items,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event.EventKey(), event); err != nil {
		s.logger.Error("failed to publish order submitted event", "error", err, "order_id", orderID)
	}
}

func (s *Service) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return &PersistenceError{Op: op, Err: err}
}
