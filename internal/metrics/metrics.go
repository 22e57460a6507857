package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ff_ugc"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	linkOutcomes     *prometheus.CounterVec
	bookmarkOps      *prometheus.CounterVec
	seenMarks        prometheus.Counter
	unseenCache      *prometheus.CounterVec
	publishFailures  *prometheus.CounterVec
	mergeRetries     prometheus.Counter
	requestDurations *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry. A nil registry leaves them unregistered.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		linkOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_link_total",
			Help:      "Wallet link requests by outcome",
		}, []string{"status"}),
		bookmarkOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmark_operations_total",
			Help:      "Bookmark mutations by operation",
		}, []string{"operation"}),
		seenMarks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_seen_total",
			Help:      "Number of times a user marked approved content as seen",
		}),
		unseenCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unseen_count_cache_total",
			Help:      "Unseen count cache lookups by result",
		}, []string{"result"}),
		publishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Events that could not be published, by type",
		}, []string{"type"}),
		mergeRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_retries_total",
			Help:      "Retries of idempotent calls after a uniqueness conflict",
		}),
		requestDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// LinkOutcome counts a wallet link result
func (m *Metrics) LinkOutcome(status string) {
	if m == nil {
		return
	}
	m.linkOutcomes.WithLabelValues(status).Inc()
}

// BookmarkOperation counts a bookmark mutation
func (m *Metrics) BookmarkOperation(operation string) {
	if m == nil {
		return
	}
	m.bookmarkOps.WithLabelValues(operation).Inc()
}

// ContentSeen counts a mark seen call
func (m *Metrics) ContentSeen() {
	if m == nil {
		return
	}
	m.seenMarks.Inc()
}

// UnseenCacheLookup counts an unseen count cache hit or miss
func (m *Metrics) UnseenCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.unseenCache.WithLabelValues(result).Inc()
}

// PublishFailure counts an event that could not be published
func (m *Metrics) PublishFailure(eventType string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(eventType).Inc()
}

// Retry counts a retried call
func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.mergeRetries.Inc()
}

// ObserveRequest records the latency of an HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDurations.WithLabelValues(method, route, statusLabel(status)).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
