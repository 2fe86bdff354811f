package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-style/internal/filesource"
	"github.com/joeblew999/plat-style/internal/style"
)

func TestInspectSourceFor(t *testing.T) {
	fs, url, err := inspectSourceFor("https://example.com/style.json")
	require.NoError(t, err)
	assert.IsType(t, &filesource.HTTP{}, fs)
	assert.Equal(t, "https://example.com/style.json", url)

	dir := t.TempDir()
	fs, url, err = inspectSourceFor(filepath.Join(dir, "style.json"))
	require.NoError(t, err)
	require.IsType(t, &filesource.Local{}, fs)
	assert.Equal(t, dir, fs.(*filesource.Local).Root())
	assert.Equal(t, "file://style.json", url)
}

func TestBuildReport(t *testing.T) {
	doc := style.New(filesource.NewStub(), 1)
	require.NoError(t, doc.LoadJSON([]byte(`{
		"name": "Report",
		"center": [1, 2],
		"transition": {"duration": 150},
		"sources": {
			"a": {"type": "vector", "url": "https://example.com/a.json"},
			"b": {"type": "raster", "tiles": ["https://example.com/{z}/{x}/{y}.png"]}
		},
		"layers": [{"id": "fill", "type": "fill", "source": "a"}]
	}`)))

	r := buildReport(doc, 2)
	assert.Equal(t, "Report", r.Name)
	assert.Equal(t, []float64{1, 2}, r.Center)
	assert.Equal(t, int64(150), r.Transition["duration_ms"])
	assert.NotContains(t, r.Transition, "delay_ms")
	assert.Equal(t, []inspectSource{
		{ID: "a", Type: "vector", URL: "https://example.com/a.json", InUse: true},
		{ID: "b", Type: "raster"},
	}, r.Sources)
	assert.Equal(t, []inspectLayer{{ID: "fill", Type: "fill", Source: "a"}}, r.Layers)
	assert.Equal(t, 2, r.Warnings)

	out, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), "center: [1, 2]")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "File", "layers": []}`), 0o644))

	assert.NoError(t, inspect(t.Context(), path, false))
	assert.NoError(t, inspect(t.Context(), path, true))
	assert.Error(t, inspect(t.Context(), filepath.Join(dir, "missing.json"), false))
}
