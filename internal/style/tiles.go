package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// worldBound is the Web Mercator extent.
var worldBound = orb.Bound{Min: orb.Point{-180, -85.0511}, Max: orb.Point{180, 85.0511}}

// Cover lists the tiles at zoom z that intersect the source bounds, or the
// whole world when the source has none. Zooms outside the source's zoom
// range yield no tiles. It fails when more than limit tiles would be listed.
func (s *Source) Cover(z maptile.Zoom, limit int) ([]maptile.Tile, error) {
	if s.MinZoom != nil && float64(z) < *s.MinZoom {
		return nil, nil
	}
	if s.MaxZoom != nil && float64(z) > *s.MaxZoom {
		return nil, nil
	}
	b := worldBound
	if s.Bounds != nil {
		b = orb.Bound{
			Min: orb.Point{max(b.Min.X(), s.Bounds.Min.X()), max(b.Min.Y(), s.Bounds.Min.Y())},
			Max: orb.Point{min(b.Max.X(), s.Bounds.Max.X()), min(b.Max.Y(), s.Bounds.Max.Y())},
		}
		if b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() {
			return nil, nil
		}
	}

	lo := maptile.At(orb.Point{b.Min.X(), b.Max.Y()}, z)
	hi := maptile.At(orb.Point{b.Max.X(), b.Min.Y()}, z)
	last := uint32(1)<<z - 1
	hi.X, hi.Y = min(hi.X, last), min(hi.Y, last)

	n := int(hi.X-lo.X+1) * int(hi.Y-lo.Y+1)
	if limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: source %q covers %d tiles at zoom %d, limit is %d",
			ErrInvalidSource, s.ID, n, z, limit)
	}
	tiles := make([]maptile.Tile, 0, n)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			tiles = append(tiles, maptile.New(x, y, z))
		}
	}
	return tiles, nil
}

// TileURL expands the source's tile templates for t. Templates are picked
// round-robin by tile position.
func (s *Source) TileURL(t maptile.Tile) (string, error) {
	if len(s.Tiles) == 0 {
		return "", fmt.Errorf("%w: source %q has no tile templates", ErrInvalidSource, s.ID)
	}
	tmpl := s.Tiles[int(t.X+t.Y)%len(s.Tiles)]
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{quadkey}", quadkey(t),
	)
	return r.Replace(tmpl), nil
}

func quadkey(t maptile.Tile) string {
	var b strings.Builder
	for i := int(t.Z); i > 0; i-- {
		digit := byte('0')
		mask := uint32(1) << (i - 1)
		if t.X&mask != 0 {
			digit++
		}
		if t.Y&mask != 0 {
			digit += 2
		}
		b.WriteByte(digit)
	}
	return b.String()
}
