package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

func newTestHandler(t *testing.T, store Store) *Handler {
	t.Helper()
	handler, err := NewHandler(newTestService(t, store, nil), discardLogger())
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}
	return handler
}

const scenarioBody = `{"order":{"user_id":"u1","shipping_address":"a","recipient_name":"r"},"items":[{"item_id":5,"quantity":2}]}`

func TestHandler_HandleSubmit(t *testing.T) {
	t.Run("returns totals for a successful submission", func(t *testing.T) {
		store := newFakeStore(10)
		store.details = []domain.OrderDetailRow{
			{OrderID: 10, OrderItems: []domain.DetailItem{{Quantity: 2, ItemPrice: price(3.5)}}},
		}
		handler := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(scenarioBody))
		req.Header.Set("Authorization", "Bearer user-token")
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", rec.Header().Get("Content-Type"))
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[{"order_id":10,"total":7}]}` {
			t.Errorf("unexpected body: %s", got)
		}
		if len(store.items) != 1 || store.items[0] != (domain.OrderItem{OrderID: 10, ItemID: 5, Quantity: 2}) {
			t.Errorf("unexpected items written: %+v", store.items)
		}
		for i, a := range store.authorizations {
			if a != "Bearer user-token" {
				t.Errorf("call %d: expected forwarded authorization, got %q", i, a)
			}
		}
	})

	t.Run("order with absent items totals zero", func(t *testing.T) {
		store := newFakeStore(10)
		handler := newTestHandler(t, store)

		var rows []domain.OrderDetailRow
		if err := json.Unmarshal([]byte(`[{"order_id":10,"order_items":[{"quantity":2,"item_price":3.5}]},{"order_id":11}]`), &rows); err != nil {
			t.Fatalf("failed to decode rows: %v", err)
		}
		store.details = rows

		rec := httptest.NewRecorder()
		handler.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(scenarioBody)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Data []domain.OrderTotal `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Data) != 2 || resp.Data[1] != (domain.OrderTotal{OrderID: 11, Total: 0}) {
			t.Errorf("unexpected totals: %+v", resp.Data)
		}
	})

	t.Run("empty details view yields empty data", func(t *testing.T) {
		handler := newTestHandler(t, newFakeStore(1))

		rec := httptest.NewRecorder()
		handler.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(scenarioBody)))

		if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[]}` {
			t.Errorf("unexpected body: %s", got)
		}
	})

	t.Run("constraint violation on order insert returns 500 with message", func(t *testing.T) {
		store := newFakeStore(10)
		store.orderErr = errors.New(`null value in column "user_id" violates not-null constraint`)
		handler := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		handler.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(scenarioBody)))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
			t.Errorf("expected text/plain, got %s", rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(rec.Body.String(), `violates not-null constraint`) {
			t.Errorf("expected violation message, got %q", rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "data") {
			t.Errorf("expected no data field, got %q", rec.Body.String())
		}
		if n := store.count("insert item"); n != 0 {
			t.Errorf("expected no item inserts, got %d", n)
		}
	})

	t.Run("malformed body returns 500 without touching the store", func(t *testing.T) {
		store := newFakeStore(10)
		handler := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		handler.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`)))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "malformed request") {
			t.Errorf("unexpected body: %q", rec.Body.String())
		}
		if len(store.calls) != 0 {
			t.Errorf("expected no store calls, got %v", store.calls)
		}
	})

	t.Run("body with trailing data is rejected without touching the store", func(t *testing.T) {
		store := newFakeStore(10)
		handler := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		handler.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(scenarioBody+"garbage")))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid request body") {
			t.Errorf("unexpected body: %q", rec.Body.String())
		}
		if len(store.calls) != 0 {
			t.Errorf("expected no store calls, got %v", store.calls)
		}
	})

	t.Run("item failure after partial writes returns 500", func(t *testing.T) {
		store := newFakeStore(10)
		store.failItemAt = 1
		store.itemErr = errors.New("connection reset by peer")
		handler := newTestHandler(t, store)

		body := `{"order":{"user_id":"u1","shipping_address":"a","recipient_name":"r"},"items":[{"item_id":5,"quantity":2},{"item_id":6,"quantity":1}]}`
		rec := httptest.NewRecorder()
		handler.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		if rec.Body.String() != "connection reset by peer" {
			t.Errorf("unexpected body: %q", rec.Body.String())
		}
		if len(store.items) != 1 {
			t.Errorf("expected earlier item to remain written, got %+v", store.items)
		}
	})
}

func TestHandler_RecordsSubmissionOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	ok := newTestHandler(t, newFakeStore(10))
	failing := newFakeStore(10)
	failing.orderErr = errors.New("permission denied for table orders")
	rejecting := newTestHandler(t, failing)

	bodies := []struct {
		handler *Handler
		body    string
	}{
		{handler: ok, body: scenarioBody},
		{handler: ok, body: scenarioBody},
		{handler: ok, body: `{"items":[]}`},
		{handler: rejecting, body: scenarioBody},
	}
	for _, b := range bodies {
		b.handler.HandleSubmit(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(b.body)))
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "intake.submissions" {
				continue
			}
			sum, isSum := m.Data.(metricdata.Sum[int64])
			if !isSum {
				t.Fatalf("expected int64 sum, got %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value("outcome")
				got[outcome.AsString()] += dp.Value
			}
		}
	}

	want := map[string]int64{"ok": 2, "malformed": 1, "persistence": 1}
	if len(got) != len(want) {
		t.Fatalf("expected outcomes %v, got %v", want, got)
	}
	for outcome, n := range want {
		if got[outcome] != n {
			t.Errorf("outcome %s: expected %d, got %d", outcome, n, got[outcome])
		}
	}
}
