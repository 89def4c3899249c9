package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		},
	)

	cartItemsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_items_dropped_total",
			Help: "Stored cart items skipped because they could not be decoded.",
		},
	)

	gatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Outbound payment gateway calls by gateway and outcome.",
		},
		[]string{"gateway", "outcome"},
	)

	ordersSettled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_settled_total",
			Help: "Orders persisted after a successful payment.",
		},
	)

	cartClearFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_clear_failures_total",
			Help: "Settled orders whose cart could not be cleared.",
		},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped", slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped", slog.String("error", err.Error()))
	}
}

// Gateway call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
	OutcomeAuthFailed  = "auth_failed"
	OutcomeParseError  = "parse_error"
)

func CartItemsDropped(n int) {
	if n > 0 {
		cartItemsDropped.Add(float64(n))
	}
}

func GatewayRequest(gateway, outcome string) {
	gatewayRequests.WithLabelValues(gateway, outcome).Inc()
}

func OrderSettled() {
	ordersSettled.Inc()
}

func CartClearFailed() {
	cartClearFailures.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by the matched
// route pattern, keeping path ids out of the label set.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(strconv.Itoa(rec.status), r.Method, path).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			httpRequestsInFlight.Dec()
		}()

		next.ServeHTTP(rec, r)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
