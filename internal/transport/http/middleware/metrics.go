package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "account_service",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "account_service",
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts",
		},
		[]string{"status"}, // success, rejected, spam, error
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "registrations_total",
			Help:      "Total number of registration attempts",
		},
		[]string{"status"},
	)

	SettingsUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "settings_updates_total",
			Help:      "Total number of account settings submissions",
		},
		[]string{"status"},
	)

	SpamRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "spam_rejections_total",
			Help:      "Submissions rejected by the honeypot check",
		},
		[]string{"kind"},
	)
)

// ObserveOutcome feeds the business counters. It is registered on the
// account service as its metrics callback.
func ObserveOutcome(op, outcome string) {
	switch op {
	case "login":
		LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	case "register":
		RegistrationsTotal.WithLabelValues(outcome).Inc()
	case "settings":
		SettingsUpdatesTotal.WithLabelValues(outcome).Inc()
	}
	if outcome == "spam" {
		SpamRejectionsTotal.WithLabelValues(op).Inc()
	}
}

// Metrics records HTTP RED metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
