// Package store holds the detection results for the process lifetime.
//
// A Store is loaded once at startup from a GeoJSON file and is read-only
// afterwards. Filtering never mutates the loaded collection; every call
// derives a fresh view, so one Store can serve any number of sessions.
package store

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
)

// AreaProperty is the feature property the filter compares against.
const AreaProperty = "area_m2"

// DefaultMinArea is the initial slider threshold in square meters.
const DefaultMinArea = 10.0

// fallbackSliderMax is the slider ceiling when no data is loaded.
const fallbackSliderMax = 500.0

// Store is an immutable collection of detected features plus derived
// metadata (bounding box, max area) computed once at load time.
type Store struct {
	log      zerolog.Logger
	fc       *geojson.FeatureCollection
	bound    *orb.Bound
	maxArea  float64
	hasArea  bool
	fallback bool
}

// Load reads a GeoJSON feature collection from path.
//
// Load fails soft: a missing or unreadable file yields an empty store with
// a nil bounding box and a logged warning, never an error. Callers can
// treat the result as loaded data regardless of what happened on disk.
func Load(path string, log zerolog.Logger) *Store {
	s := &Store{log: log, fc: geojson.NewFeatureCollection()}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("results file not readable, starting with empty collection")
		s.fallback = true
		return s
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("results file is not valid GeoJSON, starting with empty collection")
		s.fallback = true
		return s
	}

	// Drop records without geometry so every kept feature satisfies the
	// non-null geometry invariant.
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		s.fc.Append(f)
	}

	s.index()
	log.Info().Str("path", path).Int("features", len(s.fc.Features)).
		Bool("has_area", s.hasArea).Msg("results loaded")
	return s
}

// FromCollection wraps an already-parsed collection. Used by tests and by
// dataset switching where the bytes do not come from the configured path.
func FromCollection(fc *geojson.FeatureCollection, log zerolog.Logger) *Store {
	s := &Store{log: log, fc: geojson.NewFeatureCollection()}
	if fc != nil {
		for _, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			s.fc.Append(f)
		}
	}
	s.index()
	return s
}

// index derives the bounding box, max area and area-attribute presence.
func (s *Store) index() {
	for i, f := range s.fc.Features {
		b := f.Geometry.Bound()
		if i == 0 {
			s.bound = &b
		} else {
			u := s.bound.Union(b)
			s.bound = &u
		}

		if _, ok := f.Properties[AreaProperty]; ok {
			s.hasArea = true
			if a := f.Properties.MustFloat64(AreaProperty, 0); a > s.maxArea {
				s.maxArea = a
			}
		}
	}
}

// Fallback reports whether Load fell back to an empty collection because
// the file was missing or unreadable.
func (s *Store) Fallback() bool {
	return s.fallback
}

// Features returns the loaded features in load order. Callers must not
// mutate the returned slice or its elements.
func (s *Store) Features() []*geojson.Feature {
	return s.fc.Features
}

// Count returns the number of loaded features.
func (s *Store) Count() int {
	return len(s.fc.Features)
}

// Bound returns the bounding box of all loaded geometries as
// (minX, minY, maxX, maxY), or nil when the store is empty.
func (s *Store) Bound() *orb.Bound {
	return s.bound
}

// MaxArea returns the largest observed area value, 0 when empty.
func (s *Store) MaxArea() float64 {
	return s.maxArea
}

// SliderMax returns the slider ceiling: 110% of the observed max area so
// the UI always has headroom above the largest record, or a fixed
// fallback when there is nothing to observe.
func (s *Store) SliderMax() float64 {
	if s.Count() == 0 || !s.hasArea {
		return fallbackSliderMax
	}
	return s.maxArea * 1.1
}

// HasArea reports whether any loaded feature carries the area property.
func (s *Store) HasArea() bool {
	return s.hasArea
}

// Filter returns the features whose area is >= minArea, preserving the
// load order. An empty store returns an empty slice immediately. When the
// area property is absent from the dataset entirely, filtering degrades
// to a passthrough of all features rather than failing.
func (s *Store) Filter(minArea float64) []*geojson.Feature {
	if len(s.fc.Features) == 0 {
		return nil
	}

	if !s.hasArea {
		s.log.Warn().Str("property", AreaProperty).
			Msg("area property missing from dataset, returning unfiltered features")
		return s.fc.Features
	}

	var out []*geojson.Feature
	for _, f := range s.fc.Features {
		if f.Properties.MustFloat64(AreaProperty, 0) >= minArea {
			out = append(out, f)
		}
	}
	return out
}

// FilteredCollection returns the filtered view as a new feature
// collection. Features are copied so callers may decorate properties
// (e.g. embed overlay style) without touching the loaded data.
func (s *Store) FilteredCollection(minArea float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range s.Filter(minArea) {
		nf := geojson.NewFeature(f.Geometry)
		nf.ID = f.ID
		nf.Properties = f.Properties.Clone()
		fc.Append(nf)
	}
	return fc
}
