// Package style holds the in-memory style document model: a map's name,
// default camera, transition defaults, and the ordered sources, layers and
// images a renderer draws from.
//
// A Document is not safe for concurrent use. All calls must come from the
// goroutine that owns it; asynchronous work such as resource retrieval runs
// elsewhere and hands its results back to that goroutine.
package style

import (
	"encoding/json"
	"fmt"

	"github.com/joeblew999/plat-style/internal/filesource"
)

// Document is the style document aggregate.
type Document struct {
	fileSource filesource.FileSource
	pixelRatio float32
	observer   Observer

	loaded     bool
	name       string
	camera     CameraOptions
	transition TransitionOptions
	sprite     string
	glyphs     string

	sources collection[*Source]
	layers  collection[*Layer]
	images  imageSet
}

// Option configures a Document.
type Option func(*Document)

// WithObserver installs the sink for diagnostic events.
func WithObserver(o Observer) Option {
	return func(d *Document) {
		if o != nil {
			d.observer = o
		}
	}
}

// New creates an empty document. The file source and pixel ratio are fixed
// for the document's lifetime.
func New(fs filesource.FileSource, pixelRatio float32, opts ...Option) *Document {
	d := &Document{
		fileSource: fs,
		pixelRatio: pixelRatio,
		observer:   discardObserver{},
		transition: DefaultTransitionOptions(),
		sources:    newCollection[*Source](),
		layers:     newCollection[*Layer](),
		images:     newImageSet(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FileSource returns the resource resolver the document was created with.
func (d *Document) FileSource() filesource.FileSource { return d.fileSource }

// PixelRatio returns the device pixel ratio the document was created with.
func (d *Document) PixelRatio() float32 { return d.pixelRatio }

// Loaded reports whether a document has been loaded successfully.
func (d *Document) Loaded() bool { return d.loaded }

func (d *Document) Name() string                         { return d.name }
func (d *Document) DefaultCamera() CameraOptions         { return d.camera }
func (d *Document) TransitionOptions() TransitionOptions { return d.transition }
func (d *Document) SpriteURL() string                    { return d.sprite }
func (d *Document) GlyphsURL() string                    { return d.glyphs }

// LoadJSON replaces the document with the one described by data. Sources and
// layers are reset, images are kept. If data cannot be parsed the document
// is left exactly as it was.
func (d *Document) LoadJSON(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}
	d.apply(p)
	return nil
}

func (d *Document) apply(p *Parsed) {
	d.name = p.Name
	d.camera = p.Camera
	d.transition = p.Transition
	d.sprite = p.Sprite
	d.glyphs = p.Glyphs

	d.sources = newCollection[*Source]()
	for _, s := range p.Sources {
		d.sources.insert(s, -1)
	}
	d.layers = newCollection[*Layer]()
	for _, l := range p.Layers {
		d.layers.insert(l, -1)
	}
	d.loaded = true

	for _, e := range p.Diagnostics {
		d.observer.Observe(e)
	}
	d.emit(SeverityInfo, CategorySetup, fmt.Sprintf("Loaded style %q with %d sources and %d layers",
		d.name, d.sources.len(), d.layers.len()))
}

// AddSource adds src after all existing sources. It fails with
// ErrDuplicateID if a source with the same id exists.
func (d *Document) AddSource(src *Source) error {
	if err := src.validate(); err != nil {
		return err
	}
	if d.sources.has(src.ID) {
		return fmt.Errorf("%w: source %q already exists", ErrDuplicateID, src.ID)
	}
	d.sources.insert(src, -1)
	return nil
}

// RemoveSource removes and returns the source with the given id. A source
// that is still used by a layer is not removed: a warning is emitted and nil
// is returned. Unknown ids also return nil.
func (d *Document) RemoveSource(id string) *Source {
	if !d.sources.has(id) {
		return nil
	}
	if d.SourceInUse(id) {
		d.emit(SeverityWarning, CategoryGeneral, fmt.Sprintf("Source '%s' is in use, cannot remove", id))
		return nil
	}
	src, _ := d.sources.remove(id)
	return src
}

// GetSource returns the source with the given id, or nil.
func (d *Document) GetSource(id string) *Source {
	src, _ := d.sources.get(id)
	return src
}

// Sources returns the sources in the order they were added.
func (d *Document) Sources() []*Source {
	return d.sources.inOrder()
}

// SourceImpls returns the sources sorted by id.
func (d *Document) SourceImpls() []*Source {
	return d.sources.inKeyOrder()
}

// SourceInUse reports whether any layer draws from the source id.
func (d *Document) SourceInUse(id string) bool {
	used := false
	d.layers.each(func(l *Layer) bool {
		used = l.Type.HasSource() && l.Source == id
		return !used
	})
	return used
}

// AddLayer inserts layer before the layer named before, or appends it when
// before is empty. The referenced source must already be in the document.
func (d *Document) AddLayer(layer *Layer, before string) error {
	if err := layer.validate(); err != nil {
		return err
	}
	if d.layers.has(layer.ID) {
		return fmt.Errorf("%w: layer %q already exists", ErrDuplicateID, layer.ID)
	}
	if layer.Type.HasSource() && !d.sources.has(layer.Source) {
		return fmt.Errorf("%w: layer %q uses missing source %q", ErrDanglingReference, layer.ID, layer.Source)
	}
	at := -1
	if before != "" {
		if at = d.layers.position(before); at < 0 {
			return fmt.Errorf("%w: %q", ErrUnknownLayer, before)
		}
	}
	d.layers.insert(layer, at)
	return nil
}

// RemoveLayer removes and returns the layer with the given id, or nil.
func (d *Document) RemoveLayer(id string) *Layer {
	l, _ := d.layers.remove(id)
	return l
}

// GetLayer returns the layer with the given id, or nil.
func (d *Document) GetLayer(id string) *Layer {
	l, _ := d.layers.get(id)
	return l
}

// Layers returns the layers in draw order.
func (d *Document) Layers() []*Layer {
	return d.layers.inOrder()
}

// AddImage adds img, replacing any image with the same name.
func (d *Document) AddImage(img *Image) error {
	if err := img.validate(); err != nil {
		return err
	}
	d.images.add(img)
	return nil
}

// RemoveImage removes the named image. Unknown names are ignored.
func (d *Document) RemoveImage(name string) {
	d.images.remove(name)
}

// GetImage returns the named image, or nil.
func (d *Document) GetImage(name string) *Image {
	return d.images.get(name)
}

// Images returns all images sorted by name.
func (d *Document) Images() []*Image {
	return d.images.sorted()
}

func (d *Document) emit(sev Severity, cat Category, msg string) {
	d.observer.Observe(Event{Severity: sev, Category: cat, Code: NoCode, Message: msg})
}

type transitionJSON struct {
	Duration *int64 `json:"duration,omitempty"`
	Delay    *int64 `json:"delay,omitempty"`
}

// MarshalJSON encodes the document in style document form. Images are not
// part of the encoding.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"version": 8,
		"sources": orderedSources(d.Sources()),
		"layers":  d.Layers(),
	}
	if d.name != "" {
		out["name"] = d.name
	}
	if d.sprite != "" {
		out["sprite"] = d.sprite
	}
	if d.glyphs != "" {
		out["glyphs"] = d.glyphs
	}
	if c := d.camera.Center; c != nil {
		out["center"] = []float64{c.Lng, c.Lat}
	}
	if d.camera.Zoom != nil {
		out["zoom"] = *d.camera.Zoom
	}
	if d.camera.Bearing != nil {
		out["bearing"] = *d.camera.Bearing
	}
	if d.camera.Pitch != nil {
		out["pitch"] = *d.camera.Pitch
	}
	var t transitionJSON
	if v := d.transition.Duration; v != nil {
		ms := v.Milliseconds()
		t.Duration = &ms
	}
	if v := d.transition.Delay; v != nil {
		ms := v.Milliseconds()
		t.Delay = &ms
	}
	out["transition"] = t
	return json.Marshal(out)
}

// orderedSources encodes as a JSON object whose keys keep insertion order.
type orderedSources []*Source

func (s orderedSources) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, src := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(src.ID)
		if err != nil {
			return nil, err
		}
		val, err := src.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
