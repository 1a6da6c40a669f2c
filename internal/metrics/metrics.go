package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of the label service.
type Metrics struct {
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	LabelsMatched *prometheus.HistogramVec
	ResolveErrors prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "productlabel_cache_hits_total",
			Help: "Label cache lookups served from Redis",
		}, []string{"key"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "productlabel_cache_misses_total",
			Help: "Label cache lookups that fell through to MySQL",
		}, []string{"key"}),
		LabelsMatched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "productlabel_labels_matched",
			Help:    "Number of labels matched per product render",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		}, []string{"view"}),
		ResolveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "productlabel_resolve_errors_total",
			Help: "Failures while loading rules or product attributes",
		}),
	}
	reg.MustRegister(m.CacheHits, m.CacheMisses, m.LabelsMatched, m.ResolveErrors)
	return m
}

// CacheHit implements cache.Observer.
func (m *Metrics) CacheHit(key string) {
	m.CacheHits.WithLabelValues(key).Inc()
}

// CacheMiss implements cache.Observer.
func (m *Metrics) CacheMiss(key string) {
	m.CacheMisses.WithLabelValues(key).Inc()
}

// ObserveMatched records how many labels a render produced.
func (m *Metrics) ObserveMatched(view string, n int) {
	m.LabelsMatched.WithLabelValues(view).Observe(float64(n))
}

// ObserveResolveError counts a failed rule or attribute load.
func (m *Metrics) ObserveResolveError() {
	m.ResolveErrors.Inc()
}
