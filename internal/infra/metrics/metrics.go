// internal/infra/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the storefront's collectors. It satisfies persist.SyncObserver
// so state containers report into it directly.
type Registry struct {
	reg *prometheus.Registry

	RemoteWrites    *prometheus.CounterVec
	RemoteWriteSec  *prometheus.HistogramVec
	Reconciliations *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
	AuthAttempts    *prometheus.CounterVec
	OrdersPlaced    prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	remoteWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_remote_writes_total",
		Help: "Remote snapshot writes by store and result.",
	}, []string{"store", "result"})
	remoteWriteSec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_remote_write_seconds",
		Help:    "Remote snapshot write latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"store"})
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_reconciliations_total",
		Help: "Sign-in reconciliations by store and outcome.",
	}, []string{"store", "outcome"})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_active_device_sessions",
		Help: "Device sessions currently held in memory.",
	})
	authAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_auth_attempts_total",
		Help: "Login / register attempts by result.",
	}, []string{"op", "result"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_checkout_orders_total",
		Help: "Simulated orders confirmed.",
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP requests by method and status class.",
	}, []string{"method", "status"})

	r.MustRegister(
		remoteWrites, remoteWriteSec, reconciliations, activeSessions,
		authAttempts, ordersPlaced, httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		reg:             r,
		RemoteWrites:    remoteWrites,
		RemoteWriteSec:  remoteWriteSec,
		Reconciliations: reconciliations,
		ActiveSessions:  activeSessions,
		AuthAttempts:    authAttempts,
		OrdersPlaced:    ordersPlaced,
		HTTPRequests:    httpRequests,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// RemoteWrite implements persist.Observer.
func (r *Registry) RemoteWrite(store string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.RemoteWrites.WithLabelValues(store, result).Inc()
	r.RemoteWriteSec.WithLabelValues(store).Observe(elapsed.Seconds())
}

// Reconciled implements persist.SyncObserver.
func (r *Registry) Reconciled(store, outcome string) {
	r.Reconciliations.WithLabelValues(store, outcome).Inc()
}

// AuthAttempt records one login/register outcome.
func (r *Registry) AuthAttempt(op string, ok bool) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	r.AuthAttempts.WithLabelValues(op, result).Inc()
}

// OrderPlaced counts one confirmed checkout.
func (r *Registry) OrderPlaced() { r.OrdersPlaced.Inc() }

// HTTPRequest records one served request.
func (r *Registry) HTTPRequest(method string, status int) {
	r.HTTPRequests.WithLabelValues(method, statusClass(status)).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
