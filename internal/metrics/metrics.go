// Package metrics owns the Prometheus collectors exported at /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "evofit"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	likes         prometheus.Counter
	posts         prometheus.Counter
	lookups       *prometheus.CounterVec
	lookupLatency prometheus.Histogram
	feedClients   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		likes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "community",
			Name:      "likes_total",
			Help:      "Total number of post likes recorded.",
		}),
		posts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "community",
			Name:      "posts_total",
			Help:      "Total number of posts created.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nutrition",
			Name:      "lookups_total",
			Help:      "Nutrition provider lookups by outcome.",
		}, []string{"outcome"}),
		lookupLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "nutrition",
			Name:      "lookup_duration_seconds",
			Help:      "Latency of nutrition provider lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms to ~13s
		}),
		feedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Open live feed WebSocket subscribers on this instance.",
		}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.likes,
		m.posts,
		m.lookups,
		m.lookupLatency,
		m.feedClients,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.httpInFlight.Inc()
}

func (m *Metrics) RequestFinished(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) PostCreated() {
	if m == nil {
		return
	}
	m.posts.Inc()
}

func (m *Metrics) PostLiked() {
	if m == nil {
		return
	}
	m.likes.Inc()
}

// NutritionLookup records one provider call; outcome is "ok" or "error".
func (m *Metrics) NutritionLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupLatency.Observe(d.Seconds())
}

func (m *Metrics) FeedSubscribed() {
	if m == nil {
		return
	}
	m.feedClients.Inc()
}

func (m *Metrics) FeedUnsubscribed() {
	if m == nil {
		return
	}
	m.feedClients.Dec()
}
