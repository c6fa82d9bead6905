package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OTPIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_issued_total",
		Help: "Verification codes issued, by channel.",
	}, []string{"channel"})

	// OTPConfirm counts confirmation attempts by channel and result
	// (verified, mismatch, expired, missing, locked, already_verified).
	OTPConfirm = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_confirm_total",
		Help: "Verification code confirmations, by channel and result.",
	}, []string{"channel", "result"})

	OTPDispatch = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_dispatch_total",
		Help: "Verification code deliveries, by channel and result.",
	}, []string{"channel", "result"})

	DispatchQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "otp_dispatch_queue_depth",
		Help: "Deliveries waiting for a worker.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency, by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// HTTPMetrics records request latency labelled by the matched chi route pattern.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
