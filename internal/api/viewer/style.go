package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-solar/internal/api"
	"github.com/joeblew999/plat-solar/internal/humastar"
	"github.com/joeblew999/plat-solar/internal/service"
)

// StyleHandler updates the overlay style from the viewer's style form.
type StyleHandler struct {
	humastar.Handler
	svc *api.Services
}

// NewStyleHandler creates a new style handler.
func NewStyleHandler(svc *api.Services, renderer *humastar.Renderer) *StyleHandler {
	return &StyleHandler{
		Handler: humastar.Handler{Renderer: renderer},
		svc:     svc,
	}
}

func (h *StyleHandler) RegisterRoutes(hapi huma.API) {
	huma.Post(hapi, "/api/v1/viewer/style", h.Update, huma.OperationTags("viewer"))
	huma.Get(hapi, "/api/v1/viewer/style", h.Current, huma.OperationTags("viewer"))
}

// Current pushes the persisted style into the page signals, used once at
// page init so the color pickers reflect what the server has.
func (h *StyleHandler) Current(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(styleSignals(h.svc.Style.Get()))
	}), nil
}

// Update persists the style from the signals. The bus publication inside
// StyleService.Update fans the change out to every open tab; this
// session's map recolors through the same events stream, so Update only
// confirms.
func (h *StyleHandler) Update(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}

	style := service.OverlayStyle{
		Fill:        signals.String("stylefill"),
		Stroke:      signals.String("stylestroke"),
		StrokeWidth: signals.Float("strokewidth"),
		FillOpacity: signals.Float("fillopacity"),
	}

	return h.Stream(func(sse humastar.SSE) {
		updated, err := h.svc.Style.Update(style)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Success("Overlay style saved")
		sse.Signals(styleSignals(updated))
	}), nil
}

func styleSignals(st service.OverlayStyle) map[string]any {
	return map[string]any{
		"stylefill":   st.Fill,
		"stylestroke": st.Stroke,
		"strokewidth": st.StrokeWidth,
		"fillopacity": st.FillOpacity,
	}
}
