// Package gateway is the public edge in front of the intake service.
package gateway

import (
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const intakePath = "/orders"

type Handler struct {
	intake  *Upstream
	logger  *slog.Logger
	relayed metric.Int64Counter
}

func NewHandler(intake *Upstream, logger *slog.Logger) (*Handler, error) {
	relayed, err := otel.Meter("gateway").Int64Counter("gateway.submissions.relayed",
		metric.WithDescription("Order submissions relayed to the intake service by upstream status"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		intake:  intake,
		logger:  logger,
		relayed: relayed,
	}, nil
}

// HandleOrders relays an order submission to the intake service. The intake
// answer, success or failure, reaches the caller with its status and body
// unchanged. Only an unreachable intake service produces a gateway error.
func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.intake.Forward(ctx, r, intakePath)
	if err != nil {
		h.logger.Error("intake service unreachable", "error", err, "path", r.URL.Path)
		h.relayed.Add(ctx, 1, metric.WithAttributes(attribute.Int("status", http.StatusBadGateway)))
		http.Error(w, "intake service unavailable", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	h.relayed.Add(ctx, 1, metric.WithAttributes(attribute.Int("status", resp.StatusCode)))

	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if resp.StatusCode >= http.StatusInternalServerError {
		h.logger.Warn("intake rejected submission", "status", resp.StatusCode)
	} else {
		h.logger.Info("submission relayed", "status", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to relay intake response", "error", err)
	}
}
