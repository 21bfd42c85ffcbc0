package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/annuu1/finance-partner/internal/infrastructure/metrics"
)

// promauto registers against the default registry, so the package test
// binary shares one Metrics instance.
var testMetrics = metrics.New()

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/partners/p1", "/api/v1/partners/:id"},
		{"/api/v1/partners/p1/balance", "/api/v1/partners/:id/balance"},
		{"/api/v1/sales/sale-1", "/api/v1/sales/:id"},
		{"/api/v1/transactions/txn-1/approve", "/api/v1/transactions/:id/approve"},
		{"/api/v1/partners/", "/api/v1/partners/"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Errorf("normalizePath(%s) = %s, expected %s", tt.path, got, tt.expected)
		}
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testMetrics.HTTPRequests.Reset()
	testMetrics.HTTPDuration.Reset()

	mw := NewMetricsMiddleware(testMetrics)

	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/ABC123", nil)
	rr := httptest.NewRecorder()

	mw.Wrap(next).ServeHTTP(rr, req)

	if !handlerCalled {
		t.Fatal("next handler was not invoked")
	}

	counter := testMetrics.HTTPRequests.WithLabelValues(
		http.MethodGet, "/api/v1/partners/:id", strconv.Itoa(http.StatusTeapot))
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected request counter of 1, got %v", got)
	}
}
