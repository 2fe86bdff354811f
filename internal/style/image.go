package style

import (
	"fmt"
	"image"
	"slices"
	"strings"
)

// Image is a named raster resource usable by layers and icons.
type Image struct {
	Name       string
	Raster     *image.RGBA // premultiplied
	PixelRatio float32
	SDF        bool
}

// NewImage creates an image from a premultiplied raster.
func NewImage(name string, raster *image.RGBA, pixelRatio float32) *Image {
	return &Image{Name: name, Raster: raster, PixelRatio: pixelRatio}
}

// Size returns the raster size in pixels.
func (i *Image) Size() image.Point {
	if i.Raster == nil {
		return image.Point{}
	}
	return i.Raster.Bounds().Size()
}

func (i *Image) validate() error {
	switch {
	case i == nil:
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	case i.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidImage)
	case i.Raster == nil:
		return fmt.Errorf("%w: image %q has no raster", ErrInvalidImage, i.Name)
	case i.PixelRatio <= 0:
		return fmt.Errorf("%w: image %q has pixel ratio %v", ErrInvalidImage, i.Name, i.PixelRatio)
	}
	return nil
}

// imageSet holds images by name. Adding an existing name replaces it.
type imageSet struct {
	images map[string]*Image
}

func newImageSet() imageSet {
	return imageSet{images: make(map[string]*Image)}
}

func (s *imageSet) add(img *Image) {
	s.images[img.Name] = img
}

func (s *imageSet) remove(name string) {
	delete(s.images, name)
}

func (s *imageSet) get(name string) *Image {
	return s.images[name]
}

func (s *imageSet) sorted() []*Image {
	out := make([]*Image, 0, len(s.images))
	for _, img := range s.images {
		out = append(out, img)
	}
	slices.SortFunc(out, func(a, b *Image) int { return strings.Compare(a.Name, b.Name) })
	return out
}
