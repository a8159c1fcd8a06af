package intake

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/order-intake/internal/credentials"
	"github.com/joao-fontenele/order-intake/internal/domain"
)

type Handler struct {
	service     *Service
	logger      *slog.Logger
	submissions metric.Int64Counter
}

func NewHandler(service *Service, logger *slog.Logger) (*Handler, error) {
	submissions, err := otel.Meter("intake").Int64Counter("intake.submissions",
		metric.WithDescription("Order submissions by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		service:     service,
		logger:      logger,
		submissions: submissions,
	}, nil
}

type submitResponse struct {
	Data []domain.OrderTotal `json:"data"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := credentials.WithAuthorization(r.Context(), r.Header.Get("Authorization"))

	req, err := DecodeRequest(r.Body)
	if err != nil {
		h.logger.Warn("rejected malformed order submission", "error", err)
		h.record(ctx, err)
		h.writeError(w, err)
		return
	}

	totals, err := h.service.Submit(ctx, req)
	if err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			h.logger.Error("order submission failed", "error", err, "op", pe.Op)
		} else {
			h.logger.Error("order submission failed", "error", err)
		}
		h.record(ctx, err)
		h.writeError(w, err)
		return
	}

	h.record(ctx, nil)
	h.logger.Info("order submitted", "user_id", *req.Order.UserID, "items", len(req.Items), "orders", len(totals))
	h.writeJSON(w, http.StatusOK, submitResponse{Data: totals})
}

func (h *Handler) record(ctx context.Context, err error) {
	var me *MalformedRequestError
	outcome := "ok"
	switch {
	case errors.As(err, &me):
		outcome = "malformed"
	case err != nil:
		outcome = "persistence"
	}
	h.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError answers every failure with 500 and the error message as plain
// text, whatever its kind.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	if _, werr := w.Write([]byte(err.Error())); werr != nil {
		h.logger.Error("failed to write error response", "error", werr)
	}
}
