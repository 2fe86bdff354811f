package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-style/internal/filesource"
	"github.com/joeblew999/plat-style/internal/service"
)

const testStyle = `{
	"version": 8,
	"name": "Test",
	"center": [13.4, 52.5],
	"zoom": 10,
	"sources": {
		"streets": {"type": "vector", "url": "https://example.com/streets.json"},
		"aerial": {"type": "raster", "tiles": ["https://example.com/{z}/{x}/{y}.png"], "tileSize": 256}
	},
	"layers": [
		{"id": "background", "type": "background"},
		{"id": "roads", "type": "line", "source": "streets", "source-layer": "road"}
	]
}`

func newTestAPI(t *testing.T) (humatest.TestAPI, *service.StyleService) {
	t.Helper()
	cfg := huma.DefaultConfig("Test API", "1.0.0")
	cfg.CreateHooks = nil
	cfg.Transformers = append(cfg.Transformers, LinkTransformer())
	_, api := humatest.New(t, cfg)

	svc := service.NewStyleService(service.Config{
		FileSource: filesource.NewStub(),
		Logger:     slog.New(slog.DiscardHandler),
	})
	RegisterRoutes(api, &Services{Style: svc})
	return api, svc
}

func loadTestStyle(t *testing.T, api humatest.TestAPI) {
	t.Helper()
	resp := api.Put("/api/v1/style", "Content-Type: application/json", strings.NewReader(testStyle))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func decode[T any](t *testing.T, body *bytes.Buffer) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[HealthBody](t, resp.Body)
	assert.Equal(t, "ok", body.Status)
	assert.Contains(t, resp.Header().Values("Link"), `</api/v1/style>; rel="style"`)
}

func TestStyle_PutAndGet(t *testing.T) {
	api, _ := newTestAPI(t)
	loadTestStyle(t, api)

	resp := api.Get("/api/v1/style")
	require.Equal(t, http.StatusOK, resp.Code)
	sum := decode[service.Summary](t, resp.Body)
	assert.True(t, sum.Loaded)
	assert.Equal(t, "Test", sum.Name)
	assert.Equal(t, []string{"streets", "aerial"}, sum.Sources)
	assert.Equal(t, []string{"background", "roads"}, sum.Layers)
	require.NotNil(t, sum.Camera.Center)
	assert.Equal(t, 52.5, sum.Camera.Center.Lat)
	require.NotNil(t, sum.Transition.Duration)
	assert.Equal(t, int64(300), *sum.Transition.Duration)

	resp = api.Get("/api/v1/style/json")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	doc := decode[map[string]any](t, resp.Body)
	assert.Equal(t, float64(8), doc["version"])
}

func TestStyle_PutInvalid(t *testing.T) {
	api, _ := newTestAPI(t)
	loadTestStyle(t, api)

	resp := api.Put("/api/v1/style", "Content-Type: application/json", strings.NewReader(`{"sources": {`))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// The previous document is untouched.
	resp = api.Get("/api/v1/style")
	assert.Equal(t, "Test", decode[service.Summary](t, resp.Body).Name)
}

func TestStyle_LoadURLNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Post("/api/v1/style/load", map[string]any{"url": "asset://missing.json"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSources(t *testing.T) {
	api, _ := newTestAPI(t)
	loadTestStyle(t, api)

	resp := api.Get("/api/v1/sources?order=id")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[[]SourceBody](t, resp.Body)
	require.Len(t, list, 2)
	assert.Equal(t, "aerial", list[0].ID)
	assert.Equal(t, 256, list[0].TileSize)

	resp = api.Post("/api/v1/sources", map[string]any{
		"id":     "terrain",
		"type":   "raster-dem",
		"url":    "https://example.com/dem.json",
		"bounds": []float64{-10, -20, 10, 20},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Get("/api/v1/sources/terrain")
	require.Equal(t, http.StatusOK, resp.Code)
	src := decode[SourceBody](t, resp.Body)
	assert.Equal(t, "raster-dem", src.Type)
	assert.Equal(t, []float64{-10, -20, 10, 20}, src.Bounds)
	assert.Contains(t, resp.Header().Values("Link"), `</api/v1/sources>; rel="collection"`)

	resp = api.Get("/api/v1/sources")
	var ids []string
	for _, s := range decode[[]SourceBody](t, resp.Body) {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"streets", "aerial", "terrain"}, ids)
}

func TestSourceTiles(t *testing.T) {
	api, _ := newTestAPI(t)
	loadTestStyle(t, api)

	resp := api.Get("/api/v1/sources/aerial/tiles?z=1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	tiles := decode[[]service.TileRef](t, resp.Body)
	require.Len(t, tiles, 4)
	assert.Equal(t, service.TileRef{Z: 1, X: 0, Y: 0, URL: "https://example.com/1/0/0.png"}, tiles[0])

	assert.Equal(t, http.StatusBadRequest, api.Get("/api/v1/sources/aerial/tiles?z=6&limit=100").Code)
	assert.Equal(t, http.StatusBadRequest, api.Get("/api/v1/sources/streets/tiles?z=0").Code)
	assert.Equal(t, http.StatusNotFound, api.Get("/api/v1/sources/nope/tiles?z=0").Code)
}

func TestSources_Errors(t *testing.T) {
	api, _ := newTestAPI(t)
	loadTestStyle(t, api)

	tests := []struct {
		name string
		do   func() int
		want int
	}{
		{"duplicate", func() int {
			return api.Post("/api/v1/sources", map[string]any{"id": "streets", "type": "vector"}).Code
		}, http.StatusConflict},
		{"in use", func() int {
			return api.Delete("/api/v1/sources/streets").Code
		}, http.StatusConflict},
		{"unknown delete", func() int {
			return api.Delete("/api/v1/sources/nope").Code
		}, http.StatusNotFound},
		{"unknown get", func() int {
			return api.Get("/api/v1/sources/nope").Code
		}, http.StatusNotFound},
		{"bad type", func() int {
			return api.Post("/api/v1/sources", map[string]any{"id": "x", "type": "video"}).Code
		}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.do())
		})
	}

	resp := api.Delete("/api/v1/sources/aerial")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestLayers(t *testing.T) {
	api, _ := newTestAPI(t)
	loadTestStyle(t, api)

	resp := api.Post("/api/v1/layers?before=roads", map[string]any{
		"id":     "water",
		"type":   "fill",
		"source": "streets",
		"paint":  map[string]any{"fill-color": "#0000ff"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Get("/api/v1/layers")
	require.Equal(t, http.StatusOK, resp.Code)
	var ids []string
	for _, l := range decode[[]LayerBody](t, resp.Body) {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"background", "water", "roads"}, ids)

	resp = api.Get("/api/v1/layers/water")
	require.Equal(t, http.StatusOK, resp.Code)
	layer := decode[LayerBody](t, resp.Body)
	assert.Equal(t, "#0000ff", layer.Paint["fill-color"])

	assert.Equal(t, http.StatusConflict, api.Post("/api/v1/layers", map[string]any{
		"id": "ghost", "type": "line", "source": "missing",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, api.Post("/api/v1/layers?before=nope", map[string]any{
		"id": "x", "type": "background",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, api.Post("/api/v1/layers", map[string]any{
		"id": "x", "type": "line",
	}).Code)

	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/layers/water").Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/api/v1/layers/water").Code)
}

func TestImages(t *testing.T) {
	api, _ := newTestAPI(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	resp := api.Put("/api/v1/images/dot?pixelRatio=2&sdf=true", "Content-Type: image/png", bytes.NewReader(buf.Bytes()))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	info := decode[ImageInfo](t, resp.Body)
	assert.Equal(t, ImageInfo{Name: "dot", Width: 4, Height: 2, PixelRatio: 2, SDF: true}, info)

	resp = api.Get("/api/v1/images")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]ImageInfo](t, resp.Body), 1)

	resp = api.Get("/api/v1/images/dot")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	got, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 2), got.Bounds().Size())

	assert.Equal(t, http.StatusBadRequest,
		api.Put("/api/v1/images/junk", "Content-Type: image/png", strings.NewReader("not an image")).Code)

	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/images/dot").Code)
	assert.Equal(t, http.StatusNotFound, api.Get("/api/v1/images/dot").Code)
	// Removing a missing image is not an error.
	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/images/dot").Code)
}

func TestSnapshots_WithoutStore(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/api/v1/snapshots")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]any](t, resp.Body))

	resp = api.Post("/api/v1/snapshots/restore")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"restored": false}, decode[map[string]any](t, resp.Body))
}
