package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Registry is the adapter metrics collaborator. It instruments every check
// outcome for scraping and keeps the last-known gauge readings readable in
// process, because the scoring engine consumes them synchronously.
type Registry struct {
	reg *prometheus.Registry

	checksTotal   *prometheus.CounterVec
	checkFailures *prometheus.CounterVec
	responseTime  *prometheus.HistogramVec
	queueDepth    *prometheus.GaugeVec
	poolActive    *prometheus.GaugeVec
	poolPooled    *prometheus.GaugeVec
	healthScore   *prometheus.GaugeVec

	mu     sync.RWMutex
	depths map[string]int64
}

// NewRegistry creates and registers all adapter collectors
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adaptersentry_checks_total",
			Help: "Total health checks per adapter",
		}, []string{"adapter", "protocol"}),
		checkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adaptersentry_check_failures_total",
			Help: "Failed health checks per adapter",
		}, []string{"adapter", "protocol"}),
		responseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adaptersentry_check_response_seconds",
			Help:    "Health check response time per adapter",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"adapter", "protocol"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adaptersentry_queue_depth",
			Help: "Destination queue depth for queue-backed adapters",
		}, []string{"adapter"}),
		poolActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adaptersentry_pool_active_connections",
			Help: "Active pooled connections per adapter",
		}, []string{"adapter"}),
		poolPooled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adaptersentry_pool_size",
			Help: "Configured pool size per adapter",
		}, []string{"adapter"}),
		healthScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adaptersentry_health_score",
			Help: "Overall health score per adapter",
		}, []string{"adapter"}),
		depths: make(map[string]int64),
	}

	reg.MustRegister(r.checksTotal, r.checkFailures, r.responseTime,
		r.queueDepth, r.poolActive, r.poolPooled, r.healthScore)
	reg.MustRegister(prometheus.NewGoCollector())

	return r
}

// ObserveCheck records one check outcome
func (r *Registry) ObserveCheck(adapterID string, protocol types.ProtocolType, healthy bool, responseTimeMs int64) {
	labels := prometheus.Labels{"adapter": adapterID, "protocol": string(protocol)}
	r.checksTotal.With(labels).Inc()
	if !healthy {
		r.checkFailures.With(labels).Inc()
	}
	r.responseTime.With(labels).Observe(float64(responseTimeMs) / 1000.0)
}

// SetQueueDepth records a queue-backed adapter's destination depth
func (r *Registry) SetQueueDepth(adapterID string, depth int64) {
	r.queueDepth.WithLabelValues(adapterID).Set(float64(depth))

	r.mu.Lock()
	r.depths[adapterID] = depth
	r.mu.Unlock()
}

// QueueDepth returns the last recorded depth for an adapter
func (r *Registry) QueueDepth(adapterID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	depth, ok := r.depths[adapterID]
	return depth, ok
}

// SetPoolStats records an adapter's pool gauges
func (r *Registry) SetPoolStats(adapterID string, stats types.PoolStatistics) {
	r.poolActive.WithLabelValues(adapterID).Set(float64(stats.TotalActive))
	r.poolPooled.WithLabelValues(adapterID).Set(float64(stats.TotalPooled))
}

// SetHealthScore records an adapter's overall score
func (r *Registry) SetHealthScore(adapterID string, score float64) {
	r.healthScore.WithLabelValues(adapterID).Set(score)
}

// ForgetAdapter drops an unloaded adapter's series
func (r *Registry) ForgetAdapter(adapterID string) {
	labels := prometheus.Labels{"adapter": adapterID}
	r.checksTotal.DeletePartialMatch(labels)
	r.checkFailures.DeletePartialMatch(labels)
	r.responseTime.DeletePartialMatch(labels)
	r.queueDepth.DeleteLabelValues(adapterID)
	r.poolActive.DeleteLabelValues(adapterID)
	r.poolPooled.DeleteLabelValues(adapterID)
	r.healthScore.DeleteLabelValues(adapterID)

	r.mu.Lock()
	delete(r.depths, adapterID)
	r.mu.Unlock()
}

// Handler returns the scrape endpoint handler
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
