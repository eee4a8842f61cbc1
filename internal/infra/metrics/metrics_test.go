package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_CountsWritesAndReconciles(t *testing.T) {
	r := NewRegistry()
	r.RemoteWrite("cart", 20*time.Millisecond, nil)
	r.RemoteWrite("cart", 5*time.Millisecond, errors.New("boom"))
	r.Reconciled("wishlist", "adopted_remote")

	if got := testutil.ToFloat64(r.RemoteWrites.WithLabelValues("cart", "error")); got != 1 {
		t.Fatalf("cart errors = %v", got)
	}
	if got := testutil.ToFloat64(r.Reconciliations.WithLabelValues("wishlist", "adopted_remote")); got != 1 {
		t.Fatalf("reconciliations = %v", got)
	}
}

func TestHandler_ExposesStorefrontMetrics(t *testing.T) {
	r := NewRegistry()
	r.HTTPRequest("GET", 404)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `storefront_http_requests_total{method="GET",status="4xx"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", body)
	}
}
