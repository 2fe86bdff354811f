package style

import (
	"encoding/json"
	"fmt"
)

// LayerType names how a layer draws its data.
type LayerType string

const (
	LayerBackground    LayerType = "background"
	LayerFill          LayerType = "fill"
	LayerLine          LayerType = "line"
	LayerSymbol        LayerType = "symbol"
	LayerCircle        LayerType = "circle"
	LayerHeatmap       LayerType = "heatmap"
	LayerFillExtrusion LayerType = "fill-extrusion"
	LayerRaster        LayerType = "raster"
	LayerHillshade     LayerType = "hillshade"
)

// Valid reports whether t is a known layer type.
func (t LayerType) Valid() bool {
	switch t {
	case LayerBackground, LayerFill, LayerLine, LayerSymbol, LayerCircle,
		LayerHeatmap, LayerFillExtrusion, LayerRaster, LayerHillshade:
		return true
	}
	return false
}

// HasSource reports whether layers of this type draw from a source.
func (t LayerType) HasSource() bool {
	return t != LayerBackground
}

// Layer describes how data from one source is drawn. The source is held by
// id and resolved against the document when needed.
type Layer struct {
	ID          string
	Type        LayerType
	Source      string
	SourceLayer string
	MinZoom     *float64
	MaxZoom     *float64

	// Filter, Layout and Paint are carried verbatim.
	Filter json.RawMessage
	Layout json.RawMessage
	Paint  json.RawMessage
}

// NewLineLayer creates a line layer drawing from sourceID.
func NewLineLayer(id, sourceID string) *Layer {
	return &Layer{ID: id, Type: LayerLine, Source: sourceID}
}

// NewFillLayer creates a fill layer drawing from sourceID.
func NewFillLayer(id, sourceID string) *Layer {
	return &Layer{ID: id, Type: LayerFill, Source: sourceID}
}

// NewBackgroundLayer creates a layer that draws no source data.
func NewBackgroundLayer(id string) *Layer {
	return &Layer{ID: id, Type: LayerBackground}
}

func (l *Layer) key() string { return l.ID }

func (l *Layer) validate() error {
	if l == nil {
		return fmt.Errorf("%w: nil layer", ErrInvalidLayer)
	}
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLayer)
	}
	if !l.Type.Valid() {
		return fmt.Errorf("%w: layer %q has unknown type %q", ErrInvalidLayer, l.ID, l.Type)
	}
	if l.Type.HasSource() && l.Source == "" {
		return fmt.Errorf("%w: %s layer %q needs a source", ErrInvalidLayer, l.Type, l.ID)
	}
	return nil
}

type layerJSON struct {
	ID          string          `json:"id"`
	Type        LayerType       `json:"type"`
	Source      string          `json:"source,omitempty"`
	SourceLayer string          `json:"source-layer,omitempty"`
	MinZoom     *float64        `json:"minzoom,omitempty"`
	MaxZoom     *float64        `json:"maxzoom,omitempty"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	Layout      json.RawMessage `json:"layout,omitempty"`
	Paint       json.RawMessage `json:"paint,omitempty"`
}

// MarshalJSON encodes the layer in style document form.
func (l *Layer) MarshalJSON() ([]byte, error) {
	return json.Marshal(layerJSON{
		ID:          l.ID,
		Type:        l.Type,
		Source:      l.Source,
		SourceLayer: l.SourceLayer,
		MinZoom:     l.MinZoom,
		MaxZoom:     l.MaxZoom,
		Filter:      l.Filter,
		Layout:      l.Layout,
		Paint:       l.Paint,
	})
}

// ParseLayer builds a layer from its style document form.
func ParseLayer(data []byte) (*Layer, error) {
	return parseLayer(data)
}

// parseLayer builds a layer from one entry of a document's layers array.
func parseLayer(raw json.RawMessage) (*Layer, error) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: layer must be an object", ErrInvalidLayer)
	}
	l := &Layer{}
	l.ID, _ = readString(obj["id"])
	typ, _ := readString(obj["type"])
	l.Type = LayerType(typ)
	l.Source, _ = readString(obj["source"])
	l.SourceLayer, _ = readString(obj["source-layer"])
	l.MinZoom = readNumberField(obj, "minzoom").ptr()
	l.MaxZoom = readNumberField(obj, "maxzoom").ptr()
	l.Filter = obj["filter"]
	if _, ok := asObject(obj["layout"]); ok {
		l.Layout = obj["layout"]
	}
	if _, ok := asObject(obj["paint"]); ok {
		l.Paint = obj["paint"]
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	if !l.Type.HasSource() {
		l.Source, l.SourceLayer = "", ""
	}
	return l, nil
}
