// Package viewer contains Datastar SSE handlers for the viewer UI.
package viewer

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-solar/internal/api"
	"github.com/joeblew999/plat-solar/internal/humastar"
	"github.com/joeblew999/plat-solar/internal/store"
)

// FilterHandler recomputes the filtered view when the slider moves.
type FilterHandler struct {
	humastar.Handler
	svc *api.Services
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(svc *api.Services, renderer *humastar.Renderer) *FilterHandler {
	return &FilterHandler{
		Handler: humastar.Handler{Renderer: renderer},
		svc:     svc,
	}
}

func (h *FilterHandler) RegisterRoutes(hapi huma.API) {
	huma.Post(hapi, "/api/v1/viewer/filter", h.Apply, huma.OperationTags("viewer"))
}

// Apply handles a threshold change: patch the stats fragment, update the
// signals the download button depends on, and tell the page to refresh
// the map source. The threshold itself stays client-owned; it arrives as
// a signal and is never stored server-side.
func (h *FilterHandler) Apply(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	minArea := signals.Float("minarea")
	if minArea < 0 {
		minArea = 0
	}

	return h.Stream(func(sse humastar.SSE) {
		stats := h.svc.Stats(minArea)
		h.svc.Metrics.ObserveFilter("sse", stats.FilteredCount)

		html, err := h.Renderer.Render("stats", statsData(stats))
		if err != nil {
			sse.Error("failed to render stats: " + err.Error())
			return
		}
		sse.Patch(html, "#stats")
		h.svc.Metrics.IncSSEPatch()

		downloadURL := ""
		if stats.FilteredCount > 0 {
			downloadURL = fmt.Sprintf("/api/v1/download?min_area=%g", minArea)
		}
		sse.Signals(map[string]any{
			"filteredcount": stats.FilteredCount,
			"totalcount":    stats.TotalCount,
			"downloadurl":   downloadURL,
		})

		sse.DispatchCustomEvent("filter-changed", map[string]any{
			"url":   fmt.Sprintf("/api/v1/features.geojson?min_area=%g", minArea),
			"count": stats.FilteredCount,
		})
	}), nil
}

// StatsData feeds the stats fragment template.
type StatsData struct {
	Total    int
	Filtered int
	MinArea  float64
	Degraded bool
}

func statsData(stats api.StatsBody) StatsData {
	return StatsData{
		Total:    stats.TotalCount,
		Filtered: stats.FilteredCount,
		MinArea:  stats.MinArea,
		Degraded: stats.TotalCount > 0 && !stats.HasArea,
	}
}

// InitialSignals returns the signal values the viewer page boots with.
func InitialSignals(svc *api.Services) map[string]any {
	stats := svc.Stats(store.DefaultMinArea)
	downloadURL := ""
	if stats.FilteredCount > 0 {
		downloadURL = fmt.Sprintf("/api/v1/download?min_area=%g", stats.MinArea)
	}
	return map[string]any{
		"minarea":       stats.MinArea,
		"slidermax":     stats.SliderMax,
		"filteredcount": stats.FilteredCount,
		"totalcount":    stats.TotalCount,
		"downloadurl":   downloadURL,
		"error":         "",
		"success":       "",
	}
}
