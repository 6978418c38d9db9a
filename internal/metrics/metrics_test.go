package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	if m.Registry() != reg {
		t.Fatal("expected provided registry to be used")
	}

	m.OrderTransitions.WithLabelValues("submit").Inc()
	m.StockRejections.Inc()
	m.PaymentsConfirmed.Add(2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	if values["retailpos_order_transitions_total"] != 1 {
		t.Fatalf("unexpected transitions count: %v", values["retailpos_order_transitions_total"])
	}
	if values["retailpos_payments_confirmed_total"] != 2 {
		t.Fatalf("unexpected confirmations count: %v", values["retailpos_payments_confirmed_total"])
	}
}

func TestNewWithNilRegistry(t *testing.T) {
	a := New(nil)
	b := New(nil)
	if a.Registry() == b.Registry() {
		t.Fatal("each call must get its own registry")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(nil)
	m.StockRejections.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "retailpos_stock_rejections_total 1") {
		t.Fatalf("expected stock rejection counter in output, got:\n%s", rec.Body.String())
	}
}
