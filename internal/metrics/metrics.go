// Package metrics exposes Prometheus collectors for the ledger and HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger mutations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	commitRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "ledger",
			Name:      "commit_retries_total",
			Help:      "Store commits retried after an optimistic version conflict.",
		},
		[]string{"operation"},
	)

	donatedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "ledger",
			Name:      "donated_amount_total",
			Help:      "Sum of settled donation amounts.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crowdfund",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(ledgerOperations, commitRetries, donatedAmount, httpRequests, httpDuration)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveOperation counts one ledger operation outcome ("ok" or an error kind)
func ObserveOperation(operation, outcome string) {
	ledgerOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveRetry counts one conflict driven retry of operation
func ObserveRetry(operation string) {
	commitRetries.WithLabelValues(operation).Inc()
}

// ObserveDonation adds a settled donation to the donated volume
func ObserveDonation(amount decimal.Decimal) {
	donatedAmount.Add(amount.InexactFloat64())
}

// GinMiddleware records request counts and latencies by route template
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
