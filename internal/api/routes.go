// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/filesource"
	"github.com/joeblew999/plat-style/internal/service"
	"github.com/joeblew999/plat-style/internal/style"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Style *service.StyleService
}

// RegisterRoutes registers every REST route on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// Types

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageBody
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type SummaryOutput struct {
	Body service.Summary
}

type RawStyleInput struct {
	RawBody []byte `contentType:"application/json"`
}

type LoadURLInput struct {
	Body struct {
		URL string `json:"url" required:"true" minLength:"1" doc:"Style URL (http, https, asset or file)" example:"asset://styles/basic.json"`
	}
}

type SpriteOutput struct {
	Body struct {
		Images int `json:"images" doc:"Number of images added from the sprite"`
	}
}

type StyleJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterStyle registers whole-document routes.
func (h *APIHandler) RegisterStyle(api huma.API) {
	huma.Get(api, "/api/v1/style", h.GetStyle, huma.OperationTags("style"))
	huma.Put(api, "/api/v1/style", h.PutStyle, huma.OperationTags("style"))
	huma.Get(api, "/api/v1/style/json", h.GetStyleJSON, huma.OperationTags("style"))
	huma.Post(api, "/api/v1/style/load", h.LoadStyle, huma.OperationTags("style"))
	huma.Post(api, "/api/v1/style/sprite", h.LoadSprite, huma.OperationTags("style"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *struct{}) (*SummaryOutput, error) {
	return &SummaryOutput{Body: h.svc.Style.Summary()}, nil
}

func (h *APIHandler) PutStyle(ctx context.Context, input *RawStyleInput) (*SummaryOutput, error) {
	if err := h.svc.Style.Load(ctx, input.RawBody); err != nil {
		return nil, httpError(err)
	}
	return &SummaryOutput{Body: h.svc.Style.Summary()}, nil
}

func (h *APIHandler) GetStyleJSON(ctx context.Context, input *struct{}) (*StyleJSONOutput, error) {
	data, err := h.svc.Style.JSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode style", err)
	}
	return &StyleJSONOutput{ContentType: "application/json", Body: data}, nil
}

func (h *APIHandler) LoadStyle(ctx context.Context, input *LoadURLInput) (*SummaryOutput, error) {
	if err := h.svc.Style.LoadURL(ctx, input.Body.URL); err != nil {
		return nil, httpError(err)
	}
	return &SummaryOutput{Body: h.svc.Style.Summary()}, nil
}

func (h *APIHandler) LoadSprite(ctx context.Context, input *struct{}) (*SpriteOutput, error) {
	n, err := h.svc.Style.LoadSprite(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	out := &SpriteOutput{}
	out.Body.Images = n
	return out, nil
}

// httpError maps document and service errors onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, style.ErrSyntax),
		errors.Is(err, style.ErrInvalidSource),
		errors.Is(err, style.ErrInvalidLayer),
		errors.Is(err, style.ErrInvalidImage),
		errors.Is(err, style.ErrUnknownLayer):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, style.ErrDuplicateID),
		errors.Is(err, style.ErrDanglingReference),
		errors.Is(err, service.ErrSourceInUse):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, filesource.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, filesource.ErrUnsupported):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout(err.Error())
	default:
		return huma.Error502BadGateway(err.Error())
	}
}
