package style

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestParse_Camera(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want CameraOptions
	}{
		{"empty", `{}`, CameraOptions{}},
		{"center", `{"center": [10, 20]}`, CameraOptions{Center: &LatLng{Lat: 20, Lng: 10}}},
		{"center object", `{"center": {"lat": 1, "lng": 2}}`, CameraOptions{}},
		{"center wrong arity", `{"center": [1, 2, 3]}`, CameraOptions{}},
		{"center strings", `{"center": ["1", "2"]}`, CameraOptions{}},
		{"zoom", `{"zoom": 13.3}`, CameraOptions{Zoom: f64(13.3)}},
		{"zoom null", `{"zoom": null}`, CameraOptions{Zoom: f64(0)}},
		{"bearing string", `{"bearing": "north"}`, CameraOptions{Bearing: f64(0)}},
		{"pitch bool", `{"pitch": true}`, CameraOptions{Pitch: f64(0)}},
		{"negative bearing", `{"bearing": -45}`, CameraOptions{Bearing: f64(-45)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Camera)
		})
	}
}

func TestParse_Transition(t *testing.T) {
	ms := func(n int) *time.Duration {
		d := time.Duration(n) * time.Millisecond
		return &d
	}
	dur := func(d time.Duration) *time.Duration { return &d }
	tests := []struct {
		name string
		doc  string
		want TransitionOptions
	}{
		{"absent", `{}`, TransitionOptions{Duration: ms(300)}},
		{"not an object", `{"transition": 5}`, TransitionOptions{Duration: ms(300)}},
		{"both", `{"transition": {"duration": 500, "delay": 50}}`, TransitionOptions{Duration: ms(500), Delay: ms(50)}},
		{"empty object", `{"transition": {}}`, TransitionOptions{}},
		{"delay only", `{"transition": {"delay": 10}}`, TransitionOptions{Delay: ms(10)}},
		{"malformed duration", `{"transition": {"duration": "slow"}}`, TransitionOptions{Duration: ms(0)}},
		{"huge duration", `{"transition": {"duration": 1e300, "delay": -1e300}}`, TransitionOptions{Duration: dur(math.MaxInt64), Delay: dur(math.MinInt64)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Transition)
		})
	}
}

func TestParse_Name(t *testing.T) {
	for _, doc := range []string{`{}`, `{"name": 23}`, `{"name": null}`, `{"name": ["x"]}`} {
		p, err := Parse([]byte(doc))
		require.NoError(t, err, doc)
		assert.Equal(t, "", p.Name, doc)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	for _, doc := range []string{``, `{`, `{"name": }`, `[]`, `"style"`, `null`} {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrSyntax, doc)
	}
}

func TestParse_SourcesKeepDocumentOrder(t *testing.T) {
	p, err := Parse([]byte(`{"sources": {
		"zeta": {"type": "vector", "url": "mapbox://zeta"},
		"alpha": {"type": "raster", "tiles": ["http://a/{z}/{x}/{y}.png"], "tileSize": 512},
		"mid": {"type": "raster-dem", "url": "mapbox://dem", "bounds": [-10, -20, 10, 20]}
	}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, sourceIDs(p.Sources))
	assert.Empty(t, p.Diagnostics)

	alpha := p.Sources[1]
	assert.Equal(t, SourceRaster, alpha.Type)
	assert.Equal(t, 512, alpha.TileSize)
	assert.Equal(t, []string{"http://a/{z}/{x}/{y}.png"}, alpha.Tiles)

	mid := p.Sources[2]
	require.NotNil(t, mid.Bounds)
	assert.Equal(t, orb.Bound{Min: orb.Point{-10, -20}, Max: orb.Point{10, 20}}, *mid.Bounds)
}

func TestParse_GeoJSONSources(t *testing.T) {
	p, err := Parse([]byte(`{"sources": {
		"fc": {"type": "geojson", "data": {"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {}}
		]}},
		"feature": {"type": "geojson", "data": {"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 4]}, "properties": {}}},
		"geometry": {"type": "geojson", "data": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}},
		"remote": {"type": "geojson", "data": "https://example.com/data.geojson"},
		"broken": {"type": "geojson", "data": 42}
	}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"fc", "feature", "geometry", "remote"}, sourceIDs(p.Sources))
	require.Len(t, p.Diagnostics, 1)

	require.NotNil(t, p.Sources[0].Data)
	assert.Len(t, p.Sources[0].Data.Features, 1)
	assert.Equal(t, orb.Point{3, 4}, p.Sources[1].Data.Features[0].Geometry)
	assert.IsType(t, orb.LineString{}, p.Sources[2].Data.Features[0].Geometry)
	assert.Equal(t, "https://example.com/data.geojson", p.Sources[3].URL)
	assert.Nil(t, p.Sources[3].Data)
}

func TestParse_ImageSourceCoordinates(t *testing.T) {
	p, err := Parse([]byte(`{"sources": {
		"img": {"type": "image", "url": "https://example.com/a.png",
			"coordinates": [[-80, 40], [-79, 40], [-79, 39], [-80, 39]]},
		"short": {"type": "image", "url": "x", "coordinates": [[0, 0]]}
	}}`))
	require.NoError(t, err)
	require.Len(t, p.Sources, 1)
	assert.Equal(t, orb.Point{-80, 40}, p.Sources[0].Coordinates[0])
	assert.Len(t, p.Diagnostics, 1)
}

func TestParse_Layers(t *testing.T) {
	p, err := Parse([]byte(`{
		"sources": {"s": {"type": "vector", "url": "mapbox://s"}},
		"layers": [
			{"id": "bg", "type": "background", "source": "ignored"},
			{"id": "water", "type": "fill", "source": "s", "source-layer": "water",
			 "minzoom": 2, "filter": ["==", "class", "ocean"], "paint": {"fill-color": "#00f"}},
			{"id": "water", "type": "line", "source": "s"},
			{"type": "line", "source": "s"},
			{"id": "odd", "type": "sparkle", "source": "s"},
			{"id": "orphan", "type": "line", "source": "gone"},
			"not a layer"
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"bg", "water"}, layerIDs(p.Layers))
	assert.Len(t, p.Diagnostics, 5)

	bg := p.Layers[0]
	assert.Equal(t, "", bg.Source)

	water := p.Layers[1]
	assert.Equal(t, "water", water.SourceLayer)
	assert.Equal(t, f64(2), water.MinZoom)
	assert.JSONEq(t, `["==", "class", "ocean"]`, string(water.Filter))
	assert.JSONEq(t, `{"fill-color": "#00f"}`, string(water.Paint))
}

func TestParse_MalformedCollections(t *testing.T) {
	p, err := Parse([]byte(`{"sources": [], "layers": {}}`))
	require.NoError(t, err)
	assert.Empty(t, p.Sources)
	assert.Empty(t, p.Layers)
	assert.Len(t, p.Diagnostics, 2)
}
