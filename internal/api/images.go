package api

import (
	"bytes"
	"context"
	"image/png"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-style/internal/sprite"
	"github.com/joeblew999/plat-style/internal/style"
)

type ImageInfo struct {
	Name       string  `json:"name" doc:"Image name" example:"marker"`
	Width      int     `json:"width" doc:"Width in pixels"`
	Height     int     `json:"height" doc:"Height in pixels"`
	PixelRatio float32 `json:"pixelRatio" doc:"Device pixel ratio the raster was drawn for"`
	SDF        bool    `json:"sdf" doc:"Signed distance field icon"`
}

func newImageInfo(img *style.Image) ImageInfo {
	size := img.Size()
	return ImageInfo{
		Name:       img.Name,
		Width:      size.X,
		Height:     size.Y,
		PixelRatio: img.PixelRatio,
		SDF:        img.SDF,
	}
}

type ImageNameInput struct {
	Name string `path:"name" doc:"Image name" example:"marker"`
}

type PutImageInput struct {
	Name       string  `path:"name" doc:"Image name" example:"marker"`
	PixelRatio float64 `query:"pixelRatio" default:"1" minimum:"0.5" maximum:"4" doc:"Pixel ratio of the uploaded raster"`
	SDF        bool    `query:"sdf" doc:"Mark the image as a signed distance field"`
	RawBody    []byte  `contentType:"image/png" doc:"PNG or SVG image data"`
}

type ImagePNGOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type ImageOutput struct {
	Body ImageInfo
}

type ImagesOutput struct {
	Body []ImageInfo
}

// RegisterImages registers image routes.
func (h *APIHandler) RegisterImages(api huma.API) {
	huma.Get(api, "/api/v1/images", h.GetImages, huma.OperationTags("images"))
	huma.Get(api, "/api/v1/images/{name}", h.GetImage, huma.OperationTags("images"))
	huma.Put(api, "/api/v1/images/{name}", h.PutImage, huma.OperationTags("images"))
	huma.Delete(api, "/api/v1/images/{name}", h.DeleteImage, huma.OperationTags("images"))
}

func (h *APIHandler) GetImages(ctx context.Context, input *struct{}) (*ImagesOutput, error) {
	images := h.svc.Style.Images()
	out := &ImagesOutput{Body: make([]ImageInfo, 0, len(images))}
	for _, img := range images {
		out.Body = append(out.Body, newImageInfo(img))
	}
	return out, nil
}

func (h *APIHandler) GetImage(ctx context.Context, input *ImageNameInput) (*ImagePNGOutput, error) {
	img, ok := h.svc.Style.GetImage(input.Name)
	if !ok {
		return nil, huma.Error404NotFound("image not found")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Raster); err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode image", err)
	}
	return &ImagePNGOutput{ContentType: "image/png", Body: buf.Bytes()}, nil
}

func (h *APIHandler) PutImage(ctx context.Context, input *PutImageInput) (*ImageOutput, error) {
	img, err := sprite.Decode(input.Name, input.RawBody, float32(input.PixelRatio))
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid image data", err)
	}
	img.SDF = input.SDF
	if err := h.svc.Style.AddImage(ctx, img); err != nil {
		return nil, httpError(err)
	}
	return &ImageOutput{Body: newImageInfo(img)}, nil
}

func (h *APIHandler) DeleteImage(ctx context.Context, input *ImageNameInput) (*MessageOutput, error) {
	h.svc.Style.RemoveImage(ctx, input.Name)
	return &MessageOutput{Body: MessageBody{Message: "Image deleted"}}, nil
}
