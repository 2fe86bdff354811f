package style

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Cover(t *testing.T) {
	world := NewRasterSource("world", "", 256)
	world.Tiles = []string{"https://t/{z}/{x}/{y}.png"}

	tiles, err := world.Cover(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []maptile.Tile{maptile.New(0, 0, 0)}, tiles)

	tiles, err = world.Cover(2, 0)
	require.NoError(t, err)
	assert.Len(t, tiles, 16)

	_, err = world.Cover(3, 10)
	assert.ErrorIs(t, err, ErrInvalidSource)

	// North-east quadrant only.
	ne := NewRasterSource("ne", "", 256)
	ne.Bounds = &orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{179, 80}}
	tiles, err = ne.Cover(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []maptile.Tile{maptile.New(1, 0, 1)}, tiles)

	maxZoom := 4.0
	ne.MaxZoom = &maxZoom
	tiles, err = ne.Cover(5, 0)
	require.NoError(t, err)
	assert.Empty(t, tiles)
}

func TestSource_TileURL(t *testing.T) {
	src := NewRasterSource("r", "", 256)
	src.Tiles = []string{
		"https://a.example.com/{z}/{x}/{y}.png",
		"https://b.example.com/{quadkey}.png",
	}

	u, err := src.TileURL(maptile.New(2, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com/3/2/2.png", u)

	u, err = src.TileURL(maptile.New(3, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.com/211.png", u)
	assert.Equal(t, "213", quadkey(maptile.New(3, 5, 3)))

	_, err = NewVectorSource("v", "https://example.com/v.json").TileURL(maptile.New(0, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidSource)
}
