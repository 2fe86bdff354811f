package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	dataDir    string
	dbOK       bool
	pixelRatio float32
}

func NewInfoHandler(dataDir string, dbOK bool, pixelRatio float32) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, dbOK: dbOK, pixelRatio: pixelRatio}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name       string   `json:"name" doc:"Service name"`
	Version    string   `json:"version" doc:"Service version"`
	DataDir    string   `json:"data_dir,omitempty" doc:"Data directory path"`
	DB         bool     `json:"db" doc:"Whether snapshots are persisted"`
	PixelRatio float32  `json:"pixel_ratio" doc:"Device pixel ratio sprites are loaded for"`
	Features   []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"style", "sources", "layers", "images", "sprites", "events"}
	if h.dbOK {
		features = append(features, "snapshots")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:       "plat-style",
		Version:    "0.1.0",
		DataDir:    h.dataDir,
		DB:         h.dbOK,
		PixelRatio: h.pixelRatio,
		Features:   features,
	}}, nil
}
