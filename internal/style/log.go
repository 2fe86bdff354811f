package style

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Severity ranks a diagnostic event.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Category groups diagnostic events by the subsystem that raised them.
type Category string

const (
	CategoryGeneral    Category = "General"
	CategoryParseStyle Category = "ParseStyle"
	CategorySetup      Category = "Setup"
	CategorySprite     Category = "Sprite"
)

// NoCode is the code carried by events that have no numeric code.
const NoCode int64 = -1

// Event is a single diagnostic emitted by the document model.
type Event struct {
	Severity Severity
	Category Category
	Code     int64
	Message  string
}

// Observer receives diagnostic events. Implementations must not call back
// into the document that emitted the event.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type discardObserver struct{}

func (discardObserver) Observe(Event) {}

// SlogObserver forwards events to a structured logger.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates an observer writing to logger, or slog.Default() if nil.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) Observe(e Event) {
	level := slog.LevelInfo
	switch e.Severity {
	case SeverityDebug:
		level = slog.LevelDebug
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	attrs := []slog.Attr{slog.String("category", string(e.Category))}
	if e.Code != NoCode {
		attrs = append(attrs, slog.Int64("code", e.Code))
	}
	o.logger.LogAttrs(context.Background(), level, e.Message, attrs...)
}

// Recorder is an Observer that keeps every event it sees. It is safe for
// concurrent use and intended for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many recorded events equal e.
func (r *Recorder) Count(e Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.events {
		if got == e {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
