package providers

import (
	"staffping/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCycles(result string)
	ObserveCycleDuration(duration time.Duration)
	IncNotifications(kind string)
	SetOnlineStaff(rank string, count int)
	SetDocumentRecords(document string, count int)
	IncResolverCacheHits()
	IncResolverCacheMisses()
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cyclesTotal         *prometheus.CounterVec
	cycleDuration       prometheus.Histogram
	notificationsTotal  *prometheus.CounterVec
	onlineStaff         *prometheus.GaugeVec
	documentRecords     *prometheus.GaugeVec
	resolverCacheHits   prometheus.Counter
	resolverCacheMisses prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCycles(result string) {
	m.cyclesTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveCycleDuration(duration time.Duration) {
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncNotifications(kind string) {
	m.notificationsTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetOnlineStaff(rank string, count int) {
	m.onlineStaff.WithLabelValues(rank).Set(float64(count))
}

func (m *MetricsProvider) SetDocumentRecords(document string, count int) {
	m.documentRecords.WithLabelValues(document).Set(float64(count))
}

func (m *MetricsProvider) IncResolverCacheHits() {
	m.resolverCacheHits.Inc()
}

func (m *MetricsProvider) IncResolverCacheMisses() {
	m.resolverCacheMisses.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "staffping_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staffping_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "staffping_cycles_total",
			Help: "Total number of polling cycles by result (ok, degraded, failed)",
		}, []string{"result"}),

		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "staffping_cycle_duration_seconds",
			Help:    "Polling cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "staffping_notifications_total",
			Help: "Notifications sent by kind (deadzone, watchlist, operator)",
		}, []string{"kind"}),

		onlineStaff: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "staffping_online_staff",
			Help: "Currently online staff members per rank",
		}, []string{"rank"}),

		documentRecords: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "staffping_document_records",
			Help: "Number of storage records per persisted document",
		}, []string{"document"}),

		resolverCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staffping_resolver_cache_hits_total",
			Help: "Total number of identity resolver cache hits",
		}),

		resolverCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staffping_resolver_cache_misses_total",
			Help: "Total number of identity resolver cache misses",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCycles(_ string)                               {}
func (n *noopMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (n *noopMetrics) IncNotifications(_ string)                        {}
func (n *noopMetrics) SetOnlineStaff(_ string, _ int)                   {}
func (n *noopMetrics) SetDocumentRecords(_ string, _ int)               {}
func (n *noopMetrics) IncResolverCacheHits()                            {}
func (n *noopMetrics) IncResolverCacheMisses()                          {}
