package service

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleService_defaults(t *testing.T) {
	s := NewStyleService(t.TempDir())
	assert.Equal(t, DefaultStyle(), s.Get())
}

func TestStyleService_updatePersists(t *testing.T) {
	dir := t.TempDir()
	s := NewStyleService(dir)

	want := OverlayStyle{Fill: "#00ff00", Stroke: "#003300", StrokeWidth: 1, FillOpacity: 0.5}
	got, err := s.Update(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A fresh service reads the saved style back.
	reloaded := NewStyleService(dir)
	assert.Equal(t, want, reloaded.Get())
}

func TestStyleService_updateRejectsInvalid(t *testing.T) {
	s := NewStyleService(t.TempDir())

	cases := []OverlayStyle{
		{Fill: "", Stroke: "#000000", FillOpacity: 0.5},
		{Fill: "#ffffff", Stroke: "", FillOpacity: 0.5},
		{Fill: "#ffffff", Stroke: "#000000", FillOpacity: 1.5},
		{Fill: "#ffffff", Stroke: "#000000", FillOpacity: 0.5, StrokeWidth: -1},
	}
	for _, c := range cases {
		_, err := s.Update(c)
		assert.Error(t, err, "style %+v should be rejected", c)
	}

	// The stored style survives failed updates.
	assert.Equal(t, DefaultStyle(), s.Get())
}

func TestStyleService_corruptFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "style.json"), "{broken"))

	s := NewStyleService(dir)
	assert.Equal(t, DefaultStyle(), s.Get())
}

func TestOverlayStyle_apply(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{0, 0}))
	f := &geojson.Feature{Geometry: orb.Point{1, 1}}
	fc.Append(f)

	DefaultStyle().Apply(fc)

	for _, f := range fc.Features {
		assert.Equal(t, "#FFD700", f.Properties["fill"])
		assert.Equal(t, "#FF4500", f.Properties["stroke"])
		assert.Equal(t, 2.0, f.Properties["stroke-width"])
		assert.Equal(t, 0.7, f.Properties["fill-opacity"])
	}
}
