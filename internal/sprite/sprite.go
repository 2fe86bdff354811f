// Package sprite turns sprite sheets and SVG icons into style images.
package sprite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"slices"
	"strings"

	"github.com/joeblew999/plat-style/internal/style"
)

// Meta locates one icon inside a sprite sheet.
type Meta struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixelRatio float32 `json:"pixelRatio"`
	SDF        bool    `json:"sdf,omitempty"`
}

// Sheet is the result of slicing a sprite sheet.
type Sheet struct {
	Images  []*style.Image
	Skipped []string // icons whose metadata does not fit the sheet
}

// URLs returns the index and image URLs for a sprite base URL. Ratios above
// one select the @2x variant.
func URLs(base string, pixelRatio float32) (indexURL, imageURL string) {
	query := ""
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base, query = base[:i], base[i:]
	}
	if pixelRatio > 1 {
		base += "@2x"
	}
	return base + ".json" + query, base + ".png" + query
}

// Parse slices sheet according to index.
func Parse(sheet, index []byte) (*Sheet, error) {
	var metas map[string]Meta
	if err := json.Unmarshal(index, &metas); err != nil {
		return nil, fmt.Errorf("failed to parse sprite index: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(sheet))
	if err != nil {
		return nil, fmt.Errorf("failed to decode sprite image: %w", err)
	}
	bounds := src.Bounds()

	names := make([]string, 0, len(metas))
	for name := range metas {
		names = append(names, name)
	}
	slices.Sort(names)

	out := &Sheet{}
	for _, name := range names {
		m := metas[name]
		rect := image.Rect(m.X, m.Y, m.X+m.Width, m.Y+m.Height).Add(bounds.Min)
		if m.Width <= 0 || m.Height <= 0 || !rect.In(bounds) {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		if m.PixelRatio <= 0 {
			m.PixelRatio = 1
		}
		icon := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
		draw.Draw(icon, icon.Bounds(), src, rect.Min, draw.Src)

		img := style.NewImage(name, icon, m.PixelRatio)
		img.SDF = m.SDF
		out.Images = append(out.Images, img)
	}
	return out, nil
}

// Decode builds an image from PNG or SVG bytes.
func Decode(name string, data []byte, pixelRatio float32) (*style.Image, error) {
	if isSVG(data) {
		return FromSVG(name, bytes.NewReader(data), pixelRatio)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", name, err)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	return style.NewImage(name, rgba, pixelRatio), nil
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}
