package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CacheObserver(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CacheHit("k")
	m.CacheHit("k")
	m.CacheMiss("k")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("k")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues("k")))
}

func TestMetrics_ObserveMatched(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveMatched("listing", 2)
	m.ObserveMatched("product", 0)

	assert.Equal(t, 2, testutil.CollectAndCount(m.LabelsMatched))
}

func TestMetrics_ObserveResolveError(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResolveError()
	m.ObserveResolveError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResolveErrors))
}
