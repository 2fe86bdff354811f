package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/db"
)

type SnapshotsInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"500" doc:"Maximum snapshots to return"`
}

type SnapshotsOutput struct {
	Body []db.Snapshot
}

type RestoreOutput struct {
	Body struct {
		Restored bool `json:"restored" doc:"Whether a snapshot was found and loaded"`
	}
}

// RegisterSnapshots registers snapshot history routes.
func (h *APIHandler) RegisterSnapshots(api huma.API) {
	huma.Get(api, "/api/v1/snapshots", h.GetSnapshots, huma.OperationTags("snapshots"))
	huma.Post(api, "/api/v1/snapshots/restore", h.RestoreSnapshot, huma.OperationTags("snapshots"))
}

func (h *APIHandler) GetSnapshots(ctx context.Context, input *SnapshotsInput) (*SnapshotsOutput, error) {
	snaps, err := h.svc.Style.Snapshots(ctx, input.Limit)
	if err != nil {
		return nil, httpError(err)
	}
	if snaps == nil {
		snaps = []db.Snapshot{}
	}
	return &SnapshotsOutput{Body: snaps}, nil
}

func (h *APIHandler) RestoreSnapshot(ctx context.Context, input *struct{}) (*RestoreOutput, error) {
	ok, err := h.svc.Style.Restore(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	out := &RestoreOutput{}
	out.Body.Restored = ok
	return out, nil
}
