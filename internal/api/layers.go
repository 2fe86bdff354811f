package api

import (
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/style"
)

// LayerBody is a layer in style document form.
type LayerBody struct {
	ID          string         `json:"id" required:"true" minLength:"1" doc:"Unique layer identifier" example:"roads"`
	Type        string         `json:"type" required:"true" enum:"background,fill,line,symbol,circle,heatmap,fill-extrusion,raster,hillshade" doc:"Layer type" example:"line"`
	Source      string         `json:"source,omitempty" doc:"Source ID (not used by background layers)" example:"streets"`
	SourceLayer string         `json:"source-layer,omitempty" doc:"Layer within a vector source" example:"road"`
	MinZoom     *float64       `json:"minzoom,omitempty" minimum:"0" maximum:"24" doc:"Minimum zoom level"`
	MaxZoom     *float64       `json:"maxzoom,omitempty" minimum:"0" maximum:"24" doc:"Maximum zoom level"`
	Filter      any            `json:"filter,omitempty" doc:"Filter expression"`
	Layout      map[string]any `json:"layout,omitempty" doc:"Layout properties"`
	Paint       map[string]any `json:"paint,omitempty" doc:"Paint properties"`
}

func newLayerBody(l *style.Layer) (LayerBody, error) {
	var body LayerBody
	data, err := l.MarshalJSON()
	if err != nil {
		return body, err
	}
	err = json.Unmarshal(data, &body)
	return body, err
}

func (b LayerBody) toLayer() (*style.Layer, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return style.ParseLayer(data)
}

type LayerIDInput struct {
	ID string `path:"id" doc:"Layer ID" example:"roads"`
}

type CreateLayerInput struct {
	Before string `query:"before" doc:"Insert below this layer instead of on top"`
	Body   LayerBody
}

type LayerOutput struct {
	Body LayerBody
}

type LayersOutput struct {
	Body []LayerBody
}

// RegisterLayers registers layer routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers", h.CreateLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}", h.GetLayer, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/layers/{id}", h.DeleteLayer, huma.OperationTags("layers"))
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	layers := h.svc.Style.Layers()
	out := &LayersOutput{Body: make([]LayerBody, 0, len(layers))}
	for _, l := range layers {
		body, err := newLayerBody(l)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to encode layer", err)
		}
		out.Body = append(out.Body, body)
	}
	return out, nil
}

func (h *APIHandler) CreateLayer(ctx context.Context, input *CreateLayerInput) (*LayerOutput, error) {
	layer, err := input.Body.toLayer()
	if err != nil {
		return nil, httpError(err)
	}
	if err := h.svc.Style.AddLayer(ctx, layer, input.Before); err != nil {
		return nil, httpError(err)
	}
	body, err := newLayerBody(layer)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode layer", err)
	}
	return &LayerOutput{Body: body}, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *LayerIDInput) (*LayerOutput, error) {
	l, ok := h.svc.Style.GetLayer(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("layer not found")
	}
	body, err := newLayerBody(l)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode layer", err)
	}
	return &LayerOutput{Body: body}, nil
}

func (h *APIHandler) DeleteLayer(ctx context.Context, input *LayerIDInput) (*MessageOutput, error) {
	if _, err := h.svc.Style.RemoveLayer(ctx, input.ID); err != nil {
		return nil, httpError(err)
	}
	return &MessageOutput{Body: MessageBody{Message: "Layer deleted"}}, nil
}
