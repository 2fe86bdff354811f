package api

import (
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/service"
	"github.com/joeblew999/plat-style/internal/style"
)

// SourceBody is a source in style document form plus its id.
type SourceBody struct {
	ID          string      `json:"id" required:"true" minLength:"1" doc:"Unique source identifier" example:"streets"`
	Type        string      `json:"type" required:"true" enum:"vector,raster,raster-dem,geojson,image" doc:"Source type" example:"vector"`
	URL         string      `json:"url,omitempty" doc:"TileJSON or resource URL" example:"https://example.com/tiles.json"`
	Tiles       []string    `json:"tiles,omitempty" doc:"Tile URL templates"`
	TileSize    int         `json:"tileSize,omitempty" doc:"Tile size in pixels" example:"512"`
	MinZoom     *float64    `json:"minzoom,omitempty" minimum:"0" maximum:"24" doc:"Minimum zoom level"`
	MaxZoom     *float64    `json:"maxzoom,omitempty" minimum:"0" maximum:"24" doc:"Maximum zoom level"`
	Bounds      []float64   `json:"bounds,omitempty" minItems:"4" maxItems:"4" doc:"West, south, east, north"`
	Attribution string      `json:"attribution,omitempty" doc:"Attribution HTML"`
	Data        any         `json:"data,omitempty" doc:"Inline GeoJSON or a GeoJSON URL"`
	Coordinates [][]float64 `json:"coordinates,omitempty" doc:"Image corners as [lng, lat] pairs"`
}

func newSourceBody(src *style.Source) (SourceBody, error) {
	var body SourceBody
	data, err := src.MarshalJSON()
	if err != nil {
		return body, err
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return body, err
	}
	body.ID = src.ID
	return body, nil
}

func (b SourceBody) toSource() (*style.Source, error) {
	id := b.ID
	b.ID = ""
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return style.ParseSource(id, data)
}

type SourceIDInput struct {
	ID string `path:"id" doc:"Source ID" example:"streets"`
}

type SourceListInput struct {
	Order string `query:"order" enum:"insertion,id" default:"insertion" doc:"List in insertion order or sorted by id"`
}

type SourceOutput struct {
	Body SourceBody
}

type SourcesOutput struct {
	Body []SourceBody
}

// RegisterSources registers source routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
	huma.Post(api, "/api/v1/sources", h.CreateSource, huma.OperationTags("sources"))
	huma.Get(api, "/api/v1/sources/{id}", h.GetSource, huma.OperationTags("sources"))
	huma.Delete(api, "/api/v1/sources/{id}", h.DeleteSource, huma.OperationTags("sources"))
}

func (h *APIHandler) GetSources(ctx context.Context, input *SourceListInput) (*SourcesOutput, error) {
	sources := h.svc.Style.Sources(input.Order == "id")
	out := &SourcesOutput{Body: make([]SourceBody, 0, len(sources))}
	for _, src := range sources {
		body, err := newSourceBody(src)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to encode source", err)
		}
		out.Body = append(out.Body, body)
	}
	return out, nil
}

func (h *APIHandler) CreateSource(ctx context.Context, input *struct{ Body SourceBody }) (*SourceOutput, error) {
	src, err := input.Body.toSource()
	if err != nil {
		return nil, httpError(err)
	}
	if err := h.svc.Style.AddSource(ctx, src); err != nil {
		return nil, httpError(err)
	}
	body, err := newSourceBody(src)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode source", err)
	}
	return &SourceOutput{Body: body}, nil
}

func (h *APIHandler) GetSource(ctx context.Context, input *SourceIDInput) (*SourceOutput, error) {
	src, ok := h.svc.Style.GetSource(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("source not found")
	}
	body, err := newSourceBody(src)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode source", err)
	}
	return &SourceOutput{Body: body}, nil
}

func (h *APIHandler) DeleteSource(ctx context.Context, input *SourceIDInput) (*MessageOutput, error) {
	if _, err := h.svc.Style.RemoveSource(ctx, input.ID); err != nil {
		return nil, httpError(err)
	}
	return &MessageOutput{Body: MessageBody{Message: "Source deleted"}}, nil
}

type SourceTilesInput struct {
	ID    string `path:"id" doc:"Source ID" example:"aerial"`
	Zoom  uint32 `query:"z" maximum:"24" doc:"Zoom level"`
	Limit int    `query:"limit" default:"256" minimum:"1" maximum:"65536" doc:"Fail when the source covers more tiles than this"`
}

type SourceTilesOutput struct {
	Body []service.TileRef
}

// RegisterSourceTiles registers the tile coverage route.
func (h *APIHandler) RegisterSourceTiles(api huma.API) {
	huma.Get(api, "/api/v1/sources/{id}/tiles", h.GetSourceTiles, huma.OperationTags("sources"))
}

func (h *APIHandler) GetSourceTiles(ctx context.Context, input *SourceTilesInput) (*SourceTilesOutput, error) {
	refs, err := h.svc.Style.SourceTiles(input.ID, input.Zoom, input.Limit)
	if err != nil {
		return nil, httpError(err)
	}
	return &SourceTilesOutput{Body: refs}, nil
}
