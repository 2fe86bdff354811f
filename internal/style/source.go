package style

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SourceType names the kind of data a source provides.
type SourceType string

const (
	SourceVector    SourceType = "vector"
	SourceRaster    SourceType = "raster"
	SourceRasterDEM SourceType = "raster-dem"
	SourceGeoJSON   SourceType = "geojson"
	SourceImage     SourceType = "image"
)

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourceVector, SourceRaster, SourceRasterDEM, SourceGeoJSON, SourceImage:
		return true
	}
	return false
}

// Source describes where renderable data comes from. A Source must not be
// modified once it has been added to a Document.
type Source struct {
	ID          string
	Type        SourceType
	URL         string
	Tiles       []string
	TileSize    int
	MinZoom     *float64
	MaxZoom     *float64
	Bounds      *orb.Bound
	Attribution string

	// Data holds inline GeoJSON for geojson sources. When the document gives
	// a URL instead, it is stored in URL.
	Data *geojson.FeatureCollection

	// Coordinates are the four corners of an image source, clockwise from
	// the top left.
	Coordinates []orb.Point
}

// NewVectorSource creates a vector tile source backed by a TileJSON URL.
func NewVectorSource(id, url string) *Source {
	return &Source{ID: id, Type: SourceVector, URL: url}
}

// NewRasterSource creates a raster tile source.
func NewRasterSource(id, url string, tileSize int) *Source {
	return &Source{ID: id, Type: SourceRaster, URL: url, TileSize: tileSize}
}

// NewGeoJSONSource creates a geojson source holding fc inline.
func NewGeoJSONSource(id string, fc *geojson.FeatureCollection) *Source {
	return &Source{ID: id, Type: SourceGeoJSON, Data: fc}
}

func (s *Source) key() string { return s.ID }

func (s *Source) validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidSource)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSource)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: source %q has unknown type %q", ErrInvalidSource, s.ID, s.Type)
	}
	if s.Type == SourceImage && len(s.Coordinates) != 0 && len(s.Coordinates) != 4 {
		return fmt.Errorf("%w: image source %q needs 4 coordinates", ErrInvalidSource, s.ID)
	}
	return nil
}

type sourceJSON struct {
	Type        SourceType      `json:"type"`
	URL         string          `json:"url,omitempty"`
	Tiles       []string        `json:"tiles,omitempty"`
	TileSize    int             `json:"tileSize,omitempty"`
	MinZoom     *float64        `json:"minzoom,omitempty"`
	MaxZoom     *float64        `json:"maxzoom,omitempty"`
	Bounds      []float64       `json:"bounds,omitempty"`
	Attribution string          `json:"attribution,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Coordinates [][2]float64    `json:"coordinates,omitempty"`
}

// MarshalJSON encodes the source in style document form. The id is the
// key of the enclosing sources object and is not repeated.
func (s *Source) MarshalJSON() ([]byte, error) {
	out := sourceJSON{
		Type:        s.Type,
		Tiles:       s.Tiles,
		TileSize:    s.TileSize,
		MinZoom:     s.MinZoom,
		MaxZoom:     s.MaxZoom,
		Attribution: s.Attribution,
	}
	if s.Bounds != nil {
		out.Bounds = []float64{s.Bounds.Min.Lon(), s.Bounds.Min.Lat(), s.Bounds.Max.Lon(), s.Bounds.Max.Lat()}
	}
	for _, p := range s.Coordinates {
		out.Coordinates = append(out.Coordinates, [2]float64{p.Lon(), p.Lat()})
	}
	switch {
	case s.Type == SourceGeoJSON && s.Data != nil:
		data, err := s.Data.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out.Data = data
	case s.Type == SourceGeoJSON && s.URL != "":
		data, err := json.Marshal(s.URL)
		if err != nil {
			return nil, err
		}
		out.Data = data
	default:
		out.URL = s.URL
	}
	return json.Marshal(out)
}

// ParseSource builds a source from its style document form.
func ParseSource(id string, data []byte) (*Source, error) {
	return parseSource(id, data)
}

// parseSource builds a source from one entry of a document's sources object.
func parseSource(id string, raw json.RawMessage) (*Source, error) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: source %q must be an object", ErrInvalidSource, id)
	}
	typ, _ := readString(obj["type"])
	s := &Source{ID: id, Type: SourceType(typ)}
	if !s.Type.Valid() {
		return nil, fmt.Errorf("%w: source %q has unknown type %q", ErrInvalidSource, id, typ)
	}

	s.URL, _ = readString(obj["url"])
	s.Attribution, _ = readString(obj["attribution"])
	s.Tiles = readStrings(obj["tiles"])
	if n, ok := readNumber(obj["tileSize"]); ok {
		s.TileSize = int(n)
	}
	s.MinZoom = readNumberField(obj, "minzoom").ptr()
	s.MaxZoom = readNumberField(obj, "maxzoom").ptr()

	if b := readNumbers(obj["bounds"]); len(b) == 4 {
		bound := orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}}
		s.Bounds = &bound
	}

	if raw, ok := obj["coordinates"]; ok {
		var corners [][2]float64
		if err := json.Unmarshal(raw, &corners); err != nil || len(corners) != 4 {
			return nil, fmt.Errorf("%w: image source %q needs 4 coordinates", ErrInvalidSource, id)
		}
		for _, c := range corners {
			s.Coordinates = append(s.Coordinates, orb.Point{c[0], c[1]})
		}
	}

	if s.Type == SourceGeoJSON {
		if err := s.parseData(obj["data"]); err != nil {
			return nil, err
		}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) parseData(raw json.RawMessage) error {
	if raw == nil {
		return nil
	}
	if url, ok := readString(raw); ok {
		s.URL = url
		return nil
	}
	fc, err := decodeGeoJSON(raw)
	if err != nil {
		return fmt.Errorf("%w: source %q has invalid data: %v", ErrInvalidSource, s.ID, err)
	}
	s.Data = fc
	return nil
}

// decodeGeoJSON accepts a FeatureCollection, Feature or bare geometry and
// normalises it to a FeatureCollection.
func decodeGeoJSON(raw json.RawMessage) (*geojson.FeatureCollection, error) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("geojson must be an object")
	}
	typ, _ := readString(obj["type"])
	switch typ {
	case "FeatureCollection":
		return geojson.UnmarshalFeatureCollection(raw)
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	default:
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return fc, nil
	}
}
