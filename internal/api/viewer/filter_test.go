package viewer

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/joeblew999/plat-solar/internal/api"
	"github.com/joeblew999/plat-solar/internal/metrics"
	"github.com/joeblew999/plat-solar/internal/service"
	"github.com/joeblew999/plat-solar/internal/store"
)

func testServices(t *testing.T, areas ...float64) *api.Services {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for i, a := range areas {
		f := geojson.NewFeature(orb.Polygon{{
			{float64(i), 0}, {float64(i) + 1, 0}, {float64(i) + 1, 1}, {float64(i), 1}, {float64(i), 0},
		}})
		f.Properties[store.AreaProperty] = a
		fc.Append(f)
	}
	dir := t.TempDir()
	return &api.Services{
		Store:   store.FromCollection(fc, zerolog.Nop()),
		Style:   service.NewStyleService(dir),
		Dataset: service.NewDatasetService(dir, "results.geojson"),
		Metrics: metrics.New(),
	}
}

func TestStatsData(t *testing.T) {
	svc := testServices(t, 5, 15, 25)

	data := statsData(svc.Stats(10))
	assert.Equal(t, 3, data.Total)
	assert.Equal(t, 2, data.Filtered)
	assert.Equal(t, 10.0, data.MinArea)
	assert.False(t, data.Degraded)
}

func TestStatsData_degradedWithoutAreaAttribute(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{0, 0}))
	svc := testServices(t)
	svc.Store = store.FromCollection(fc, zerolog.Nop())

	data := statsData(svc.Stats(10))
	assert.Equal(t, 1, data.Total)
	assert.True(t, data.Degraded)
}

func TestInitialSignals(t *testing.T) {
	svc := testServices(t, 5, 15, 25)

	signals := InitialSignals(svc)
	assert.Equal(t, store.DefaultMinArea, signals["minarea"])
	assert.InDelta(t, 27.5, signals["slidermax"].(float64), 1e-9)
	assert.Equal(t, 2, signals["filteredcount"])
	assert.Equal(t, 3, signals["totalcount"])
	assert.Equal(t, "/api/v1/download?min_area=10", signals["downloadurl"])
	assert.Equal(t, "", signals["error"])
}

func TestInitialSignals_emptyStore(t *testing.T) {
	svc := testServices(t)

	signals := InitialSignals(svc)
	assert.Equal(t, 0, signals["filteredcount"])
	assert.Equal(t, "", signals["downloadurl"])
	assert.Equal(t, 500.0, signals["slidermax"])
}
