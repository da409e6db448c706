// Package metrics exposes Prometheus collectors for the web server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billhub_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	sessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billhub_sessions_expired_total",
			Help: "Sessions ended by the idle timeout",
		},
	)

	activeGuards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "billhub_session_guards_active",
			Help: "Idle guards currently armed",
		},
	)

	billRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billhub_bill_requests_total",
			Help: "Bill copy requests by service and result",
		},
		[]string{"service", "result"},
	)

	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billhub_payments_total",
			Help: "Mock payments by method and result",
		},
		[]string{"method", "result"},
	)

	prefsChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billhub_preference_changes_total",
			Help: "Preference updates by dark mode and language",
		},
		[]string{"dark", "lang"},
	)
)

// Middleware records request counts and latency by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func RecordLogin(result string) { loginsTotal.WithLabelValues(result).Inc() }

func RecordSessionExpired() { sessionsExpiredTotal.Inc() }

func SetActiveGuards(n int) { activeGuards.Set(float64(n)) }

func RecordBillRequest(service, result string) {
	billRequestsTotal.WithLabelValues(service, result).Inc()
}

func RecordPayment(method, result string) {
	paymentsTotal.WithLabelValues(method, result).Inc()
}

func RecordPrefsChange(dark bool, lang string) {
	prefsChangesTotal.WithLabelValues(strconv.FormatBool(dark), lang).Inc()
}
