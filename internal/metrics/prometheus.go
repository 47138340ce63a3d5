package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeldash",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream API calls",
		},
		[]string{"resource", "outcome"},
	)

	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modeldash",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeldash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modeldash",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(upstreamRequestsTotal, upstreamRequestDuration, httpRequestsTotal, httpRequestDuration)
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func observeUpstreamCall(resource string, success bool, duration time.Duration) {
	upstreamRequestsTotal.WithLabelValues(resource, outcomeLabel(success)).Inc()
	upstreamRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// GinMiddleware instruments inbound requests. Unmatched routes share one
// label so arbitrary paths cannot blow up cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
