package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

// AuditHandler records every submitted order event in the audit log.
type AuditHandler struct {
	logger  *slog.Logger
	events  metric.Int64Counter
	skipped metric.Int64Counter
}

func NewAuditHandler(logger *slog.Logger) (*AuditHandler, error) {
	meter := otel.Meter("worker")

	events, err := meter.Int64Counter("intake.audit.events",
		metric.WithDescription("Order submitted events recorded"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("intake.audit.skipped",
		metric.WithDescription("Events that could not be decoded"),
	)
	if err != nil {
		return nil, err
	}

	return &AuditHandler{logger: logger, events: events, skipped: skipped}, nil
}

// Handle never fails: an undecodable payload is logged and skipped so one bad
// message does not stall the partition.
func (h *AuditHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderSubmittedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Warn("skipping undecodable order event", "error", err, "bytes", len(payload))
		h.skipped.Add(ctx, 1)
		return nil
	}

	quantity := 0
	for _, item := range event.Items {
		quantity += item.Quantity
	}

	h.logger.Info("order submitted",
		"event_id", event.EventID,
		"order_id", event.OrderID,
		"user_id", event.UserID,
		"lines", len(event.Items),
		"quantity", quantity,
		"submitted_at", event.Timestamp,
	)
	h.events.Add(ctx, 1, metric.WithAttributes(attribute.Bool("empty", len(event.Items) == 0)))
	return nil
}
