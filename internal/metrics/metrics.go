package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry         *prometheus.Registry
	filterEvals      *prometheus.CounterVec
	loadFailures     prometheus.Counter
	ssePatches       prometheus.Counter
	featuresLoaded   prometheus.Gauge
	downloadsServed  prometheus.Counter
	filteredFeatures prometheus.Histogram
}

// New creates a fresh Metrics registry with viewer metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	filterEvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "filter_evaluations_total",
		Help:      "Count of threshold filter evaluations by surface (rest, sse)",
	}, []string{"surface"})

	loadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "load_failures_total",
		Help:      "Count of results-file loads that fell back to an empty collection",
	})

	ssePatches := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "sse_patches_total",
		Help:      "Count of Datastar patches sent to viewer sessions",
	})

	featuresLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "solar",
		Name:      "features_loaded",
		Help:      "Number of features currently held by the store",
	})

	downloadsServed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "solar",
		Name:      "downloads_served_total",
		Help:      "Count of filtered GeoJSON downloads served",
	})

	filteredFeatures := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "solar",
		Name:      "filtered_features",
		Help:      "Distribution of filtered view sizes",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	registry.MustRegister(
		filterEvals,
		loadFailures,
		ssePatches,
		featuresLoaded,
		downloadsServed,
		filteredFeatures,
	)

	return &Metrics{
		registry:         registry,
		filterEvals:      filterEvals,
		loadFailures:     loadFailures,
		ssePatches:       ssePatches,
		featuresLoaded:   featuresLoaded,
		downloadsServed:  downloadsServed,
		filteredFeatures: filteredFeatures,
	}
}

// ObserveFilter records one filter evaluation and its result size.
func (m *Metrics) ObserveFilter(surface string, filtered int) {
	if m == nil {
		return
	}
	m.filterEvals.With(prometheus.Labels{"surface": surface}).Inc()
	m.filteredFeatures.Observe(float64(filtered))
}

// IncLoadFailure increments the fallback-load counter.
func (m *Metrics) IncLoadFailure() {
	if m == nil {
		return
	}
	m.loadFailures.Inc()
}

// IncSSEPatch increments the Datastar patch counter.
func (m *Metrics) IncSSEPatch() {
	if m == nil {
		return
	}
	m.ssePatches.Inc()
}

// SetFeaturesLoaded records the store size after a load.
func (m *Metrics) SetFeaturesLoaded(n int) {
	if m == nil {
		return
	}
	m.featuresLoaded.Set(float64(n))
}

// IncDownload increments the download counter.
func (m *Metrics) IncDownload() {
	if m == nil {
		return
	}
	m.downloadsServed.Inc()
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
