package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-solar/internal/api"
	"github.com/joeblew999/plat-solar/internal/humastar"
)

// DatasetHandler renders the dataset panel in the viewer UI.
type DatasetHandler struct {
	humastar.Handler
	svc *api.Services
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(svc *api.Services, renderer *humastar.Renderer) *DatasetHandler {
	return &DatasetHandler{
		Handler: humastar.Handler{Renderer: renderer},
		svc:     svc,
	}
}

func (h *DatasetHandler) RegisterRoutes(hapi huma.API) {
	huma.Get(hapi, "/api/v1/viewer/datasets", h.ListDatasets, huma.OperationTags("viewer"))
}

// ListDatasets patches the dataset panel with the result files on disk.
func (h *DatasetHandler) ListDatasets(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		files, err := h.svc.Dataset.List()
		if err != nil {
			sse.Error("failed to list datasets: " + err.Error())
			return
		}

		items := make([]any, 0, len(files))
		for _, f := range files {
			items = append(items, f)
		}
		sse.Patch(
			h.RenderList("dataset-card", items, "No result files", "Put a .geojson file in the data directory"),
			"#dataset-list",
		)
		h.svc.Metrics.IncSSEPatch()
	}), nil
}
