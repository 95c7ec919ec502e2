// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-solar/internal/humastar"
	"github.com/joeblew999/plat-solar/internal/metrics"
	"github.com/joeblew999/plat-solar/internal/service"
	"github.com/joeblew999/plat-solar/internal/store"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Store   *store.Store
	Style   *service.StyleService
	Dataset *service.DatasetService
	Metrics *metrics.Metrics
}

// Types

// MinAreaInput carries the threshold shared by the filtered endpoints.
type MinAreaInput struct {
	MinArea float64 `query:"min_area" minimum:"0" doc:"Minimum panel area in m²" example:"10"`
}

// FeaturesInput paginates the filtered attribute listing.
type FeaturesInput struct {
	MinAreaInput
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Pagination offset"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
}

// FeatureRecord is one detection attribute row.
type FeatureRecord struct {
	ID     string  `json:"id" doc:"Feature identifier"`
	AreaM2 float64 `json:"area_m2" doc:"Detected panel area in m²"`
}

// StatsBody summarizes the store and the current filtered view.
type StatsBody struct {
	TotalCount     int       `json:"totalCount" doc:"Number of loaded features"`
	FilteredCount  int       `json:"filteredCount" doc:"Features with area >= minArea"`
	MinArea        float64   `json:"minArea" doc:"Threshold the counts were computed with"`
	MaxArea        float64   `json:"maxArea" doc:"Largest observed area (m²)"`
	SliderMax      float64   `json:"sliderMax" doc:"Suggested slider ceiling (110% of max area)"`
	DefaultMinArea float64   `json:"defaultMinArea" doc:"Initial threshold for new sessions"`
	HasArea        bool      `json:"hasArea" doc:"Whether the dataset carries the area attribute"`
	BBox           []float64 `json:"bbox,omitempty" doc:"Data bounds as (minX, minY, maxX, maxY); omitted when empty"`
}

// Actions advertises the download link only while there is something to
// download, so clients never have to guess when the action is valid.
func (b StatsBody) Actions() []humastar.Action {
	if b.FilteredCount == 0 {
		return nil
	}
	return []humastar.Action{{
		Rel:    "download",
		Href:   fmt.Sprintf("/api/v1/download?min_area=%g", b.MinArea),
		Method: "GET",
		Title:  "Download filtered GeoJSON",
	}}
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers all REST routes.
func (h *APIHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/stats", h.GetStats, huma.OperationTags("features"))
	huma.Get(api, "/api/v1/features", h.GetFeatures, huma.OperationTags("features"))
	huma.Get(api, "/api/v1/features.geojson", h.GetFeaturesGeoJSON, huma.OperationTags("features"))
	huma.Get(api, "/api/v1/download", h.Download, huma.OperationTags("features"))
	huma.Get(api, "/api/v1/datasets", h.GetDatasets, huma.OperationTags("datasets"))
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"))
	huma.Put(api, "/api/v1/style", h.PutStyle, huma.OperationTags("style"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

// Stats builds a StatsBody for the given threshold. Shared with the SSE
// viewer handlers so both surfaces report identical numbers.
func (h *Services) Stats(minArea float64) StatsBody {
	body := StatsBody{
		TotalCount:     h.Store.Count(),
		FilteredCount:  len(h.Store.Filter(minArea)),
		MinArea:        minArea,
		MaxArea:        h.Store.MaxArea(),
		SliderMax:      h.Store.SliderMax(),
		DefaultMinArea: store.DefaultMinArea,
		HasArea:        h.Store.HasArea(),
	}
	if b := h.Store.Bound(); b != nil {
		body.BBox = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}
	return body
}

func (h *APIHandler) GetStats(ctx context.Context, input *MinAreaInput) (*struct{ Body StatsBody }, error) {
	body := h.svc.Stats(input.MinArea)
	h.svc.Metrics.ObserveFilter("rest", body.FilteredCount)
	return &struct{ Body StatsBody }{Body: body}, nil
}

func (h *APIHandler) GetFeatures(ctx context.Context, input *FeaturesInput) (*struct {
	Body humastar.PageBody[FeatureRecord]
}, error) {
	filtered := h.svc.Store.Filter(input.MinArea)
	h.svc.Metrics.ObserveFilter("rest", len(filtered))

	records := make([]FeatureRecord, 0, len(filtered))
	for i, f := range filtered {
		records = append(records, FeatureRecord{
			ID:     featureID(f.ID, i),
			AreaM2: f.Properties.MustFloat64(store.AreaProperty, 0),
		})
	}

	offset, limit := input.Offset, input.Limit
	if limit == 0 {
		limit = 50
	}
	page := records[min(offset, len(records)):]
	if len(page) > limit {
		page = page[:limit]
	}

	return &struct {
		Body humastar.PageBody[FeatureRecord]
	}{Body: humastar.PageBody[FeatureRecord]{
		Total:  len(records),
		Offset: offset,
		Limit:  limit,
		Data:   page,
	}}, nil
}

// GeoJSONOutput is a raw GeoJSON response.
type GeoJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *APIHandler) GetFeaturesGeoJSON(ctx context.Context, input *MinAreaInput) (*GeoJSONOutput, error) {
	fc := h.svc.Store.FilteredCollection(input.MinArea)
	h.svc.Style.Get().Apply(fc)
	h.svc.Metrics.ObserveFilter("rest", len(fc.Features))

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to encode features", err)
	}
	return &GeoJSONOutput{ContentType: "application/geo+json", Body: data}, nil
}

// DownloadOutput is a GeoJSON attachment.
type DownloadOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (h *APIHandler) Download(ctx context.Context, input *MinAreaInput) (*DownloadOutput, error) {
	fc := h.svc.Store.FilteredCollection(input.MinArea)
	if len(fc.Features) == 0 {
		return nil, huma.Error409Conflict("no features match the current threshold")
	}
	h.svc.Style.Get().Apply(fc)

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to encode features", err)
	}

	h.svc.Metrics.IncDownload()
	return &DownloadOutput{
		ContentType:        "application/geo+json",
		ContentDisposition: `attachment; filename="filtered_solar_panels.geojson"`,
		Body:               data,
	}, nil
}

func (h *APIHandler) GetDatasets(ctx context.Context, input *struct{}) (*struct{ Body []service.DatasetFile }, error) {
	files, err := h.svc.Dataset.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list datasets", err)
	}
	return &struct{ Body []service.DatasetFile }{Body: files}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *struct{}) (*struct{ Body service.OverlayStyle }, error) {
	return &struct{ Body service.OverlayStyle }{Body: h.svc.Style.Get()}, nil
}

func (h *APIHandler) PutStyle(ctx context.Context, input *struct{ Body service.OverlayStyle }) (*struct{ Body service.OverlayStyle }, error) {
	updated, err := h.svc.Style.Update(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &struct{ Body service.OverlayStyle }{Body: updated}, nil
}

// featureID normalizes the GeoJSON feature id, falling back to the load
// index when the source file has none.
func featureID(id any, idx int) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return fmt.Sprintf("%d", idx)
	default:
		return fmt.Sprintf("%v", v)
	}
}
