package style

import (
	"time"

	"github.com/paulmach/orb"
)

// DefaultTransitionDuration applies when a document has no transition object.
const DefaultTransitionDuration = 300 * time.Millisecond

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the position as an orb point (lng, lat order).
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

// LatLngFromPoint converts an orb point into a LatLng.
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// CameraOptions is the default camera pose of a document. A nil field is unset.
type CameraOptions struct {
	Center  *LatLng  `json:"center,omitempty"`
	Zoom    *float64 `json:"zoom,omitempty"`
	Bearing *float64 `json:"bearing,omitempty"`
	Pitch   *float64 `json:"pitch,omitempty"`
}

// TransitionOptions are the default property transition timings.
type TransitionOptions struct {
	Duration *time.Duration `json:"duration,omitempty"`
	Delay    *time.Duration `json:"delay,omitempty"`
}

// DefaultTransitionOptions returns the timings used when none are given.
func DefaultTransitionOptions() TransitionOptions {
	d := DefaultTransitionDuration
	return TransitionOptions{Duration: &d}
}

// fieldState distinguishes a missing key from a key holding the wrong type.
type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldZero
	fieldValue
)

// field is the result of leniently reading one scalar from a document.
type field[T any] struct {
	state fieldState
	value T
}

func unset[T any]() field[T]     { return field[T]{} }
func zeroed[T any]() field[T]    { return field[T]{state: fieldZero} }
func valued[T any](v T) field[T] { return field[T]{state: fieldValue, value: v} }

// ptr resolves the field: unset gives nil, malformed gives the zero value.
func (f field[T]) ptr() *T {
	switch f.state {
	case fieldZero:
		var zero T
		return &zero
	case fieldValue:
		v := f.value
		return &v
	default:
		return nil
	}
}
