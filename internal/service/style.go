// Package service owns the style document for the server and serialises all
// access to it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-style/internal/db"
	"github.com/joeblew999/plat-style/internal/filesource"
	"github.com/joeblew999/plat-style/internal/sprite"
	"github.com/joeblew999/plat-style/internal/style"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrSourceInUse = errors.New("source is in use")
)

// SnapshotStore persists serialized documents.
type SnapshotStore interface {
	Save(ctx context.Context, name string, body []byte) error
	Latest(ctx context.Context) (*db.Snapshot, error)
	List(ctx context.Context, limit int) ([]db.Snapshot, error)
}

// Config configures a StyleService.
type Config struct {
	FileSource filesource.FileSource
	PixelRatio float32
	Bus        *EventBus
	Store      SnapshotStore // optional
	Logger     *slog.Logger
}

// StyleService is the single owner of a style document. The document itself
// is not synchronised, so every call goes through the service lock.
type StyleService struct {
	mu     sync.RWMutex
	doc    *style.Document
	fs     filesource.FileSource
	bus    *EventBus
	store  SnapshotStore
	logger *slog.Logger
}

// NewStyleService creates a service around an empty document.
func NewStyleService(cfg Config) *StyleService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = NewEventBus()
	}
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}
	logger := cfg.Logger.With("component", "style")
	return &StyleService{
		doc:    style.New(cfg.FileSource, cfg.PixelRatio, style.WithObserver(style.NewSlogObserver(logger))),
		fs:     cfg.FileSource,
		bus:    cfg.Bus,
		store:  cfg.Store,
		logger: logger,
	}
}

// Bus returns the bus mutations are published on.
func (s *StyleService) Bus() *EventBus {
	return s.bus
}

// Summary describes the current document.
type Summary struct {
	Loaded     bool                `json:"loaded" doc:"Whether a style has been loaded"`
	Name       string              `json:"name" doc:"Style name"`
	Camera     style.CameraOptions `json:"camera" doc:"Default camera"`
	Transition Transition          `json:"transition" doc:"Default transition"`
	Sprite     string              `json:"sprite,omitempty" doc:"Sprite base URL"`
	Glyphs     string              `json:"glyphs,omitempty" doc:"Glyphs URL template"`
	Sources    []string            `json:"sources" doc:"Source IDs in insertion order"`
	Layers     []string            `json:"layers" doc:"Layer IDs in draw order"`
	Images     []string            `json:"images" doc:"Image names"`
}

// Transition is a transition in milliseconds. Nil fields are unset.
type Transition struct {
	Duration *int64 `json:"duration,omitempty" doc:"Duration in milliseconds"`
	Delay    *int64 `json:"delay,omitempty" doc:"Delay in milliseconds"`
}

func newTransition(t style.TransitionOptions) Transition {
	return Transition{Duration: millis(t.Duration), Delay: millis(t.Delay)}
}

func millis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

// Summary returns a description of the current document.
func (s *StyleService) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		Loaded:     s.doc.Loaded(),
		Name:       s.doc.Name(),
		Camera:     s.doc.DefaultCamera(),
		Transition: newTransition(s.doc.TransitionOptions()),
		Sprite:     s.doc.SpriteURL(),
		Glyphs:     s.doc.GlyphsURL(),
		Sources:    []string{},
		Layers:     []string{},
		Images:     []string{},
	}
	for _, src := range s.doc.Sources() {
		sum.Sources = append(sum.Sources, src.ID)
	}
	for _, l := range s.doc.Layers() {
		sum.Layers = append(sum.Layers, l.ID)
	}
	for _, img := range s.doc.Images() {
		sum.Images = append(sum.Images, img.Name)
	}
	return sum
}

// JSON serialises the current document.
func (s *StyleService) JSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.MarshalJSON()
}

// Load replaces the document with data.
func (s *StyleService) Load(ctx context.Context, data []byte) error {
	if err := s.load(data); err != nil {
		return err
	}
	s.saveSnapshot(ctx)
	return nil
}

func (s *StyleService) load(data []byte) error {
	s.mu.Lock()
	err := s.doc.LoadJSON(data)
	name := s.doc.Name()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.bus.Publish(Event{Resource: "style", Action: "loaded", ID: name})
	return nil
}

// LoadURL fetches a style through the file source and loads it, then loads
// its sprite. A sprite failure is logged and does not fail the load.
func (s *StyleService) LoadURL(ctx context.Context, url string) error {
	data, err := filesource.Fetch(ctx, s.fs, filesource.Resource{Kind: filesource.KindStyle, URL: url})
	if err != nil {
		return fmt.Errorf("failed to fetch style %s: %w", url, err)
	}
	if err := s.Load(ctx, data); err != nil {
		return err
	}
	if n, err := s.LoadSprite(ctx); err != nil {
		s.logger.Warn("failed to load sprite", "url", url, "error", err)
	} else if n > 0 {
		s.logger.Info("loaded sprite", "url", url, "images", n)
	}
	return nil
}

// LoadSprite fetches the document's sprite and adds its icons as images.
// It returns the number of images added; a document without a sprite adds
// none.
func (s *StyleService) LoadSprite(ctx context.Context) (int, error) {
	s.mu.RLock()
	base, ratio := s.doc.SpriteURL(), s.doc.PixelRatio()
	s.mu.RUnlock()
	if base == "" {
		return 0, nil
	}

	indexURL, imageURL := sprite.URLs(base, ratio)
	index, err := filesource.Fetch(ctx, s.fs, filesource.Resource{Kind: filesource.KindSpriteJSON, URL: indexURL})
	if err != nil {
		return 0, err
	}
	sheet, err := filesource.Fetch(ctx, s.fs, filesource.Resource{Kind: filesource.KindSpriteImage, URL: imageURL})
	if err != nil {
		return 0, err
	}
	parsed, err := sprite.Parse(sheet, index)
	if err != nil {
		return 0, err
	}
	for _, name := range parsed.Skipped {
		s.logger.Warn("sprite icon outside sheet", "icon", name)
	}

	s.mu.Lock()
	added := 0
	for _, img := range parsed.Images {
		if err := s.doc.AddImage(img); err == nil {
			added++
		}
	}
	s.mu.Unlock()
	s.bus.Publish(Event{Resource: "images", Action: "loaded", ID: base})
	return added, nil
}

// Restore loads the newest snapshot, if there is one.
func (s *StyleService) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	snap, err := s.store.Latest(ctx)
	if err != nil || snap == nil {
		return false, err
	}
	if err := s.load(snap.Body); err != nil {
		return false, fmt.Errorf("failed to restore snapshot %d: %w", snap.ID, err)
	}
	return true, nil
}

// Snapshots lists saved snapshots, newest first.
func (s *StyleService) Snapshots(ctx context.Context, limit int) ([]db.Snapshot, error) {
	if s.store == nil {
		return []db.Snapshot{}, nil
	}
	return s.store.List(ctx, limit)
}

func (s *StyleService) saveSnapshot(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.RLock()
	name := s.doc.Name()
	body, err := s.doc.MarshalJSON()
	s.mu.RUnlock()
	if err == nil {
		err = s.store.Save(ctx, name, body)
	}
	if err != nil {
		s.logger.Error("failed to save snapshot", "error", err)
	}
}

func (s *StyleService) mutated(ctx context.Context, e Event) {
	s.bus.Publish(e)
	if e.Resource != "images" {
		s.saveSnapshot(ctx)
	}
}

// Sources returns the sources in insertion order, or sorted by id.
func (s *StyleService) Sources(sortedByID bool) []*style.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sortedByID {
		return s.doc.SourceImpls()
	}
	return s.doc.Sources()
}

// GetSource returns a source by ID.
func (s *StyleService) GetSource(id string) (*style.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.doc.GetSource(id)
	return src, src != nil
}

// TileRef is one tile of a source with its expanded URL.
type TileRef struct {
	Z   uint32 `json:"z"`
	X   uint32 `json:"x"`
	Y   uint32 `json:"y"`
	URL string `json:"url"`
}

// SourceTiles lists the tile URLs a source covers at zoom z.
func (s *StyleService) SourceTiles(id string, z uint32, limit int) ([]TileRef, error) {
	src, ok := s.GetSource(id)
	if !ok {
		return nil, fmt.Errorf("source %q %w", id, ErrNotFound)
	}
	tiles, err := src.Cover(maptile.Zoom(z), limit)
	if err != nil {
		return nil, err
	}
	refs := make([]TileRef, 0, len(tiles))
	for _, t := range tiles {
		u, err := src.TileURL(t)
		if err != nil {
			return nil, err
		}
		refs = append(refs, TileRef{Z: uint32(t.Z), X: t.X, Y: t.Y, URL: u})
	}
	return refs, nil
}

// AddSource adds a source to the document.
func (s *StyleService) AddSource(ctx context.Context, src *style.Source) error {
	s.mu.Lock()
	err := s.doc.AddSource(src)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.mutated(ctx, Event{Resource: "sources", Action: "created", ID: src.ID})
	return nil
}

// RemoveSource removes a source that no layer uses.
func (s *StyleService) RemoveSource(ctx context.Context, id string) (*style.Source, error) {
	s.mu.Lock()
	if s.doc.GetSource(id) == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("source %q %w", id, ErrNotFound)
	}
	removed := s.doc.RemoveSource(id)
	s.mu.Unlock()
	if removed == nil {
		return nil, fmt.Errorf("source %q: %w", id, ErrSourceInUse)
	}
	s.mutated(ctx, Event{Resource: "sources", Action: "deleted", ID: id})
	return removed, nil
}

// Layers returns the layers in draw order.
func (s *StyleService) Layers() []*style.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Layers()
}

// GetLayer returns a layer by ID.
func (s *StyleService) GetLayer(id string) (*style.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.doc.GetLayer(id)
	return l, l != nil
}

// AddLayer inserts a layer before another, or appends it when before is empty.
func (s *StyleService) AddLayer(ctx context.Context, layer *style.Layer, before string) error {
	s.mu.Lock()
	err := s.doc.AddLayer(layer, before)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.mutated(ctx, Event{Resource: "layers", Action: "created", ID: layer.ID})
	return nil
}

// RemoveLayer removes a layer by ID.
func (s *StyleService) RemoveLayer(ctx context.Context, id string) (*style.Layer, error) {
	s.mu.Lock()
	removed := s.doc.RemoveLayer(id)
	s.mu.Unlock()
	if removed == nil {
		return nil, fmt.Errorf("layer %q %w", id, ErrNotFound)
	}
	s.mutated(ctx, Event{Resource: "layers", Action: "deleted", ID: id})
	return removed, nil
}

// Images returns all images sorted by name.
func (s *StyleService) Images() []*style.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Images()
}

// GetImage returns an image by name.
func (s *StyleService) GetImage(name string) (*style.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img := s.doc.GetImage(name)
	return img, img != nil
}

// AddImage adds or replaces an image.
func (s *StyleService) AddImage(ctx context.Context, img *style.Image) error {
	s.mu.Lock()
	err := s.doc.AddImage(img)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.mutated(ctx, Event{Resource: "images", Action: "created", ID: img.Name})
	return nil
}

// RemoveImage removes an image. Removing an unknown name is not an error.
func (s *StyleService) RemoveImage(ctx context.Context, name string) {
	s.mu.Lock()
	s.doc.RemoveImage(name)
	s.mu.Unlock()
	s.mutated(ctx, Event{Resource: "images", Action: "deleted", ID: name})
}
