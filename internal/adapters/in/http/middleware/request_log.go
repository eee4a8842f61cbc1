// internal/adapters/in/http/middleware/request_log.go
package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// RequestObserver receives one call per finished request (metrics).
type RequestObserver interface {
	HTTPRequest(method string, status int)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// RequestLog logs every request except /healthz and /metrics. obs may be nil.
func RequestLog(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			if obs != nil {
				obs.HTTPRequest(r.Method, rec.status)
			}
			if r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/metrics") {
				return
			}
			dev, _ := DeviceID(r)
			log.Printf("[http] %s %s status=%d device=%s elapsed=%s", r.Method, r.URL.Path, rec.status, shortID(dev), time.Since(start))
		})
	}
}

// shortID keeps logs correlatable without printing the whole cookie value.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
