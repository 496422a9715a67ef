package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that hit no route, so scanners probing
// random URLs cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

const metricsNS = "mealplan"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNS,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNS,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNS,
		Name:      "http_requests_inflight",
		Help:      "Requests currently being served.",
	})

	// Bodies range from small JSON to multi-MiB recipe images and exports.
	sizeBuckets = prometheus.ExponentialBuckets(256, 4, 9) // 256B..16MiB

	httpReqSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNS,
			Name:      "http_request_size_bytes",
			Help:      "Declared request body size by method and route.",
			Buckets:   sizeBuckets,
		},
		[]string{"method", "route"},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNS,
			Name:      "http_response_size_bytes",
			Help:      "Response body size by method and route.",
			Buckets:   sizeBuckets,
		},
		[]string{"method", "route"},
	)

	idemReplays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNS,
			Name:      "idempotent_replays_total",
			Help:      "Requests answered from a stored idempotency record.",
		},
		[]string{"scope"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNS,
			Name:      "rate_limited_total",
			Help:      "Requests rejected with 429 by route.",
		},
		[]string{"route"},
	)

	authFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNS,
		Name:      "auth_failures_total",
		Help:      "Requests carrying a bearer token that failed verification.",
	})

	planExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNS,
			Name:      "plan_exports_total",
			Help:      "Successful weekly plan exports by format.",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(
		httpReqs, httpLat, httpInflight, httpReqSize, httpRespSize,
		idemReplays, rateLimited, authFailures, planExports,
	)
}

// Metrics instruments every request with Prometheus collectors. Route labels
// are Gin route patterns. On top of the RED metrics it counts idempotent
// replays, 429 rejections, failed bearer tokens and weekly plan exports,
// all read from the context once the rest of the chain has run.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		status := c.Writer.Status()

		httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if n := c.Request.ContentLength; n > 0 {
			httpReqSize.WithLabelValues(method, route).Observe(float64(n))
		}
		// Size is -1 when nothing was written (e.g. 204, 304).
		if n := c.Writer.Size(); n >= 0 {
			httpRespSize.WithLabelValues(method, route).Observe(float64(n))
		}

		if IsReplay(c) {
			idemReplays.WithLabelValues(IdempotencyScope(c)).Inc()
		}
		if status == http.StatusTooManyRequests {
			rateLimited.WithLabelValues(route).Inc()
		}
		if c.GetBool(ctxKeyAuthFailed) {
			authFailures.Inc()
		}
		if status == http.StatusOK && strings.HasSuffix(route, "/export") {
			planExports.WithLabelValues(exportFormat(c.Query("format"))).Inc()
		}
	}
}

// exportFormat folds the format query into a bounded label set; blank means
// the PDF default.
func exportFormat(q string) string {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "", "pdf":
		return "pdf"
	case "xlsx":
		return "xlsx"
	default:
		return "other"
	}
}
