package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-solar/internal/api"
	"github.com/joeblew999/plat-solar/internal/humastar"
	"github.com/joeblew999/plat-solar/internal/service"
)

// EventHandler streams change events to live viewer sessions via SSE.
type EventHandler struct {
	humastar.Handler
	svc *api.Services
}

// NewEventHandler creates a new event handler.
func NewEventHandler(svc *api.Services, renderer *humastar.Renderer) *EventHandler {
	return &EventHandler{
		Handler: humastar.Handler{Renderer: renderer},
		svc:     svc,
	}
}

func (h *EventHandler) RegisterRoutes(hapi huma.API) {
	huma.Get(hapi, "/api/v1/viewer/events", h.Events, huma.OperationTags("viewer"))
}

// Events keeps one SSE stream open per tab. When another session changes
// the overlay style, every tab re-fetches its map source so the new style
// properties take effect without a reload.
func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			ch := service.DefaultBus.Subscribe()
			defer service.DefaultBus.Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					switch ev.Kind {
					case "style":
						st := h.svc.Style.Get()
						sse.Signals(styleSignals(st))
						h.svc.Metrics.IncSSEPatch()
					}
					sse.DispatchCustomEvent("resource-changed", map[string]any{
						"kind":   ev.Kind,
						"action": ev.Action,
					})
				}
			}
		},
	}, nil
}
