package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oracomigo",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracomigo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oracomigo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	prayersRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "oracomigo",
			Subsystem: "gamification",
			Name:      "prayers_recorded_total",
			Help:      "Total number of \"I prayed this\" actions.",
		},
	)

	gracesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "oracomigo",
			Subsystem: "gamification",
			Name:      "graces_awarded_total",
			Help:      "Total graces awarded to users.",
		},
	)

	postsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracomigo",
			Subsystem: "community",
			Name:      "posts_created_total",
			Help:      "Total number of posts and replies created.",
		},
		[]string{"kind"},
	)

	permissionDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracomigo",
			Subsystem: "community",
			Name:      "permission_denied_total",
			Help:      "Mutations rejected for lack of role.",
		},
		[]string{"path"},
	)

	snapshotSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracomigo",
			Subsystem: "store",
			Name:      "snapshot_saves_total",
			Help:      "Snapshot writes to the durable store.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		prayersRecorded,
		gracesAwarded,
		postsCreated,
		permissionDenied,
		snapshotSaves,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(c.Request.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordPrayer(graces int) {
	prayersRecorded.Inc()
	if graces > 0 {
		gracesAwarded.Add(float64(graces))
	}
}

func RecordPost(isReply bool) {
	kind := "post"
	if isReply {
		kind = "reply"
	}
	postsCreated.WithLabelValues(kind).Inc()
}

func RecordPermissionDenied(path string) {
	if path == "" {
		path = "unknown"
	}
	permissionDenied.WithLabelValues(path).Inc()
}

func RecordSnapshotSave(success bool) {
	snapshotSaves.WithLabelValues(strconv.FormatBool(success)).Inc()
}
