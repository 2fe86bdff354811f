package sprite

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/joeblew999/plat-style/internal/style"
)

// FromSVG rasterises an SVG icon at its view box size scaled by pixelRatio.
func FromSVG(name string, r io.Reader, pixelRatio float32) (*style.Image, error) {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg %q: %w", name, err)
	}

	w := int(math.Ceil(icon.ViewBox.W * float64(pixelRatio)))
	h := int(math.Ceil(icon.ViewBox.H * float64(pixelRatio)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg %q has an empty view box", name)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1)

	return style.NewImage(name, img, pixelRatio), nil
}
