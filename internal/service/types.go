// Package service contains business logic for the solar results viewer.
package service

import "github.com/paulmach/orb/geojson"

// OverlayStyle is the styling applied to the filtered overlay layer.
// Single source of truth: Huma reads the tags for OpenAPI + validation.
// The property names written by Apply follow the simplestyle keys the
// MapLibre layers are configured from, so the style travels inside the
// GeoJSON itself.
type OverlayStyle struct {
	Fill        string  `json:"fill" required:"true" doc:"Fill color (CSS)" example:"#FFD700" default:"#FFD700"`
	Stroke      string  `json:"stroke" required:"true" doc:"Stroke color (CSS)" example:"#FF4500" default:"#FF4500"`
	StrokeWidth float64 `json:"strokeWidth" minimum:"0" maximum:"10" doc:"Stroke width in pixels" example:"2" default:"2"`
	FillOpacity float64 `json:"fillOpacity" minimum:"0" maximum:"1" doc:"Fill opacity (0-1)" example:"0.7" default:"0.7"`
}

// DefaultStyle returns the gold-on-orange styling the detection overlay
// ships with.
func DefaultStyle() OverlayStyle {
	return OverlayStyle{
		Fill:        "#FFD700",
		Stroke:      "#FF4500",
		StrokeWidth: 2,
		FillOpacity: 0.7,
	}
}

// Apply embeds the style into every feature's properties.
func (st OverlayStyle) Apply(fc *geojson.FeatureCollection) {
	if fc == nil {
		return
	}
	for _, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		f.Properties["fill"] = st.Fill
		f.Properties["stroke"] = st.Stroke
		f.Properties["stroke-width"] = st.StrokeWidth
		f.Properties["fill-opacity"] = st.FillOpacity
	}
}

// DatasetFile is a detection results file available in the data directory.
type DatasetFile struct {
	Name     string `json:"name" doc:"File name" example:"solar_panels_final_results.geojson"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	Active   bool   `json:"active" doc:"Whether this is the dataset currently served"`
	Modified string `json:"modified" doc:"Last modification time (RFC 3339)"`
}
