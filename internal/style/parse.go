package style

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Parsed is the result of parsing a style document. It is built without
// touching any Document, so a failed parse never leaves partial state behind.
type Parsed struct {
	Name       string
	Camera     CameraOptions
	Transition TransitionOptions
	Sprite     string
	Glyphs     string
	Sources    []*Source
	Layers     []*Layer

	// Diagnostics lists entries that were skipped while parsing.
	Diagnostics []Event
}

// Parse reads a style document. Fields of the wrong type fall back to their
// defaults; only a document that is not a JSON object is an error.
func Parse(data []byte) (*Parsed, error) {
	if err := checkSyntax(data); err != nil {
		return nil, err
	}
	doc, ok := asObject(data)
	if !ok {
		return nil, &SyntaxError{Offset: -1, Msg: "document must be a JSON object"}
	}

	p := &Parsed{}
	p.Name, _ = readString(doc["name"])
	p.Sprite, _ = readString(doc["sprite"])
	p.Glyphs, _ = readString(doc["glyphs"])
	p.Camera = parseCamera(doc)
	p.Transition = parseTransition(doc)
	p.parseSources(doc["sources"])
	p.parseLayers(doc["layers"])
	return p, nil
}

func checkSyntax(data []byte) error {
	if json.Valid(data) {
		return nil
	}
	var v any
	err := json.Unmarshal(data, &v)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Offset: se.Offset, Msg: se.Error()}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &SyntaxError{Offset: 0, Msg: "empty document"}
	}
	return &SyntaxError{Offset: -1, Msg: "malformed JSON"}
}

func parseCamera(doc map[string]json.RawMessage) CameraOptions {
	var cam CameraOptions
	if c := readNumbers(doc["center"]); len(c) == 2 {
		cam.Center = &LatLng{Lat: c[1], Lng: c[0]}
	}
	cam.Zoom = readNumberField(doc, "zoom").ptr()
	cam.Bearing = readNumberField(doc, "bearing").ptr()
	cam.Pitch = readNumberField(doc, "pitch").ptr()
	return cam
}

func parseTransition(doc map[string]json.RawMessage) TransitionOptions {
	t, ok := asObject(doc["transition"])
	if !ok {
		return DefaultTransitionOptions()
	}
	return TransitionOptions{
		Duration: millis(readNumberField(t, "duration")).ptr(),
		Delay:    millis(readNumberField(t, "delay")).ptr(),
	}
}

func (p *Parsed) parseSources(raw json.RawMessage) {
	if raw == nil {
		return
	}
	keys, entries, ok := orderedObject(raw)
	if !ok {
		p.warn("sources must be an object")
		return
	}
	for _, id := range keys {
		src, err := parseSource(id, entries[id])
		if err != nil {
			p.warn(err.Error())
			continue
		}
		p.Sources = append(p.Sources, src)
	}
}

func (p *Parsed) parseLayers(raw json.RawMessage) {
	if raw == nil {
		return
	}
	var entries []json.RawMessage
	if !isKind(raw, '[') || json.Unmarshal(raw, &entries) != nil {
		p.warn("layers must be an array")
		return
	}

	sources := make(map[string]bool, len(p.Sources))
	for _, s := range p.Sources {
		sources[s.ID] = true
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		l, err := parseLayer(entry)
		if err != nil {
			p.warn(err.Error())
			continue
		}
		if seen[l.ID] {
			p.warn(fmt.Sprintf("duplicate layer id %q", l.ID))
			continue
		}
		if l.Type.HasSource() && !sources[l.Source] {
			p.warn(fmt.Sprintf("layer %q references unknown source %q", l.ID, l.Source))
			continue
		}
		seen[l.ID] = true
		p.Layers = append(p.Layers, l)
	}
}

func (p *Parsed) warn(msg string) {
	p.Diagnostics = append(p.Diagnostics, Event{
		Severity: SeverityWarning,
		Category: CategoryParseStyle,
		Code:     NoCode,
		Message:  msg,
	})
}

// millis converts milliseconds to a duration, saturating at the range of
// time.Duration.
func millis(f field[float64]) field[time.Duration] {
	ns := f.value * float64(time.Millisecond)
	var d time.Duration
	switch {
	case ns >= math.MaxInt64:
		d = math.MaxInt64
	case ns <= math.MinInt64:
		d = math.MinInt64
	default:
		d = time.Duration(ns)
	}
	return field[time.Duration]{state: f.state, value: d}
}

// readNumberField distinguishes a missing key (unset) from a key holding
// something other than a number (zero).
func readNumberField(obj map[string]json.RawMessage, key string) field[float64] {
	raw, ok := obj[key]
	if !ok {
		return unset[float64]()
	}
	if n, ok := readNumber(raw); ok {
		return valued(n)
	}
	return zeroed[float64]()
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isKind(raw json.RawMessage, kind byte) bool {
	return firstByte(raw) == kind
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if !isKind(raw, '{') {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// orderedObject decodes an object and also returns its keys in document
// order. A repeated key keeps its first position and its last value.
func orderedObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, bool) {
	if !isKind(raw, '{') {
		return nil, nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, false
	}
	var keys []string
	entries := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, false
		}
		if _, dup := entries[key]; !dup {
			keys = append(keys, key)
		}
		entries[key] = value
	}
	return keys, entries, true
}

func readString(raw json.RawMessage) (string, bool) {
	if !isKind(raw, '"') {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func readNumber(raw json.RawMessage) (float64, bool) {
	c := firstByte(raw)
	if c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// readNumbers returns the elements of an all-numeric array, or nil.
func readNumbers(raw json.RawMessage) []float64 {
	if !isKind(raw, '[') {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		n, ok := readNumber(item)
		if !ok {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func readStrings(raw json.RawMessage) []string {
	if !isKind(raw, '[') {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := readString(item); ok {
			out = append(out, s)
		}
	}
	return out
}
