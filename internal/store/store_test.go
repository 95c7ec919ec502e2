package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectionWithAreas(areas ...float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, a := range areas {
		f := geojson.NewFeature(orb.Polygon{{
			{float64(i), 0}, {float64(i) + 1, 0}, {float64(i) + 1, 1}, {float64(i), 1}, {float64(i), 0},
		}})
		f.Properties[AreaProperty] = a
		fc.Append(f)
	}
	return fc
}

func writeCollection(t *testing.T, fc *geojson.FeatureCollection) string {
	t.Helper()
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "results.geojson")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func areasOf(features []*geojson.Feature) []float64 {
	var out []float64
	for _, f := range features {
		out = append(out, f.Properties.MustFloat64(AreaProperty, -1))
	}
	return out
}

func TestLoad(t *testing.T) {
	path := writeCollection(t, collectionWithAreas(5, 15, 25))
	s := Load(path, zerolog.Nop())

	assert.Equal(t, 3, s.Count())
	assert.False(t, s.Fallback())
	assert.True(t, s.HasArea())
	assert.Equal(t, 25.0, s.MaxArea())
	require.NotNil(t, s.Bound())
}

func TestLoad_missingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "does-not-exist.geojson"), zerolog.Nop())

	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Fallback())
	assert.Nil(t, s.Bound())
	assert.Empty(t, s.Filter(0))
}

func TestLoad_corruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{not geojson"), 0644))

	s := Load(path, zerolog.Nop())
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Fallback())
	assert.Nil(t, s.Bound())
}

func TestLoad_dropsFeaturesWithoutGeometry(t *testing.T) {
	fc := collectionWithAreas(5)
	fc.Features = append(fc.Features, &geojson.Feature{Properties: geojson.Properties{AreaProperty: 99.0}})
	path := writeCollection(t, fc)

	s := Load(path, zerolog.Nop())
	assert.Equal(t, 1, s.Count())
}

func TestFilter_threshold(t *testing.T) {
	s := FromCollection(collectionWithAreas(5, 15, 25), zerolog.Nop())

	assert.Equal(t, []float64{15, 25}, areasOf(s.Filter(10)))
	assert.Empty(t, s.Filter(30))
	// boundary is inclusive
	assert.Equal(t, []float64{15, 25}, areasOf(s.Filter(15)))
}

func TestFilter_preservesOrder(t *testing.T) {
	s := FromCollection(collectionWithAreas(25, 5, 15, 40), zerolog.Nop())
	assert.Equal(t, []float64{25, 15, 40}, areasOf(s.Filter(10)))
}

func TestFilter_monotonic(t *testing.T) {
	s := FromCollection(collectionWithAreas(3, 7, 12, 18, 40, 55, 90), zerolog.Nop())

	prev := s.Count() + 1
	for _, threshold := range []float64{0, 5, 10, 20, 50, 100} {
		n := len(s.Filter(threshold))
		assert.LessOrEqual(t, n, prev, "raising threshold to %v grew the view", threshold)
		prev = n
	}
}

func TestFilter_idempotent(t *testing.T) {
	s := FromCollection(collectionWithAreas(5, 15, 25), zerolog.Nop())

	once := s.FilteredCollection(10)
	twice := FromCollection(once, zerolog.Nop()).FilteredCollection(10)
	assert.Equal(t, areasOf(once.Features), areasOf(twice.Features))
}

func TestFilter_emptyStore(t *testing.T) {
	s := FromCollection(geojson.NewFeatureCollection(), zerolog.Nop())

	assert.Empty(t, s.Filter(0))
	assert.Empty(t, s.Filter(100))
	assert.Nil(t, s.Bound())
}

func TestFilter_missingAreaAttribute(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < 3; i++ {
		f := geojson.NewFeature(orb.Point{float64(i), float64(i)})
		f.Properties["name"] = "panel"
		fc.Append(f)
	}
	s := FromCollection(fc, zerolog.Nop())

	// Degrades to a passthrough rather than failing.
	assert.False(t, s.HasArea())
	assert.Len(t, s.Filter(1000), 3)
}

func TestBound(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{120.0, 23.0}))
	fc.Append(geojson.NewFeature(orb.Point{121.5, 24.2}))
	s := FromCollection(fc, zerolog.Nop())

	b := s.Bound()
	require.NotNil(t, b)
	assert.Equal(t, 120.0, b.Min[0])
	assert.Equal(t, 23.0, b.Min[1])
	assert.Equal(t, 121.5, b.Max[0])
	assert.Equal(t, 24.2, b.Max[1])
}

func TestSliderMax(t *testing.T) {
	s := FromCollection(collectionWithAreas(100, 200), zerolog.Nop())
	assert.InDelta(t, 220.0, s.SliderMax(), 1e-9)

	empty := FromCollection(nil, zerolog.Nop())
	assert.Equal(t, 500.0, empty.SliderMax())
}

func TestFilteredCollection_copies(t *testing.T) {
	s := FromCollection(collectionWithAreas(5, 15), zerolog.Nop())

	fc := s.FilteredCollection(10)
	require.Len(t, fc.Features, 1)
	fc.Features[0].Properties["fill"] = "#000000"

	// The loaded data stays untouched.
	for _, f := range s.Features() {
		_, ok := f.Properties["fill"]
		assert.False(t, ok)
	}
}
