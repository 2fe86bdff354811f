package editor

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/service"
)

// EventHandler streams document changes to the Datastar UI via SSE.
type EventHandler struct {
	style *service.StyleService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(style *service.StyleService) *EventHandler {
	return &EventHandler{style: style}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

// Events sends the current summary, then one patch per published change
// until the client goes away.
func (h *EventHandler) Events(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			bus := h.style.Bus()
			ch := bus.Subscribe()
			defer bus.Unsubscribe(ch)

			if err := h.send(sse, nil); err != nil {
				return
			}
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-ch:
					if !ok {
						return
					}
					if err := h.send(sse, &ev); err != nil {
						return
					}
				}
			}
		},
	}, nil
}

func (h *EventHandler) send(sse SSE, ev *service.Event) error {
	sum := h.style.Summary()
	signals := map[string]any{"style": sum}
	if ev != nil {
		signals["lastEvent"] = ev
	}
	if err := sse.Signals(signals); err != nil {
		return err
	}
	return sse.Patch(renderLayerList(sum.Layers), "#layer-list")
}

func renderLayerList(ids []string) string {
	if len(ids) == 0 {
		return `<li class="empty">No layers</li>`
	}
	var b strings.Builder
	for i := len(ids) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, `<li data-layer="%[1]s">%[1]s</li>`, html.EscapeString(ids[i]))
	}
	return b.String()
}
