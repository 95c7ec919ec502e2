package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestMetrics_exposition(t *testing.T) {
	m := New()
	m.ObserveFilter("rest", 42)
	m.ObserveFilter("sse", 7)
	m.IncLoadFailure()
	m.IncSSEPatch()
	m.SetFeaturesLoaded(100)
	m.IncDownload()

	body := scrape(t, m)
	assert.Contains(t, body, `solar_filter_evaluations_total{surface="rest"} 1`)
	assert.Contains(t, body, `solar_filter_evaluations_total{surface="sse"} 1`)
	assert.Contains(t, body, "solar_load_failures_total 1")
	assert.Contains(t, body, "solar_sse_patches_total 1")
	assert.Contains(t, body, "solar_features_loaded 100")
	assert.Contains(t, body, "solar_downloads_served_total 1")
	assert.Contains(t, body, "solar_filtered_features_count 2")
}

func TestMetrics_independentRegistries(t *testing.T) {
	a := New()
	b := New()
	a.IncDownload()

	assert.Contains(t, scrape(t, a), "solar_downloads_served_total 1")
	assert.Contains(t, scrape(t, b), "solar_downloads_served_total 0")
}

func TestMetrics_nilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFilter("rest", 1)
	m.IncLoadFailure()
	m.IncSSEPatch()
	m.SetFeaturesLoaded(5)
	m.IncDownload()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 503, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "unavailable"))
}
