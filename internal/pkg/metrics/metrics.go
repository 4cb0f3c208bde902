package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotelmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotelmap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Ranking metrics
	RankDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hotelmap",
		Subsystem: "geo",
		Name:      "rank_duration_seconds",
		Help:      "Time spent ranking the catalog by distance",
		Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	RankedItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hotelmap",
		Subsystem: "geo",
		Name:      "ranked_items",
		Help:      "Number of hotels ranked per request",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
	})

	Selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelmap",
		Subsystem: "geo",
		Name:      "selections_total",
		Help:      "Total map clicks handled, by source",
	}, []string{"source"})

	StoredSelections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hotelmap",
		Subsystem: "geo",
		Name:      "stored_selections",
		Help:      "Sessions currently holding a selection",
	})

	SelectionsEvicted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelmap",
		Subsystem: "geo",
		Name:      "selections_evicted_total",
		Help:      "Stored selections dropped, by reason",
	}, []string{"reason"})

	SelectionPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hotelmap",
		Subsystem: "events",
		Name:      "selection_publish_errors_total",
		Help:      "Selection events that could not be published",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hotelmap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelmap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelmap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// Route pattern keeps /v1/hotels/:id at a single label value.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
