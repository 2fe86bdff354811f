package service

import (
	"sync"
	"sync/atomic"
)

// Event represents a style document mutation.
type Event struct {
	Resource string `json:"resource"` // "style", "sources", "layers" or "images"
	Action   string `json:"action"`   // "loaded", "created" or "deleted"
	ID       string `json:"id"`
	Seq      uint64 `json:"seq"` // set by Publish; a gap means events were dropped
}

// EventBus is a simple fan-out pub/sub for document change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	seq  atomic.Uint64
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish stamps the next sequence number on e and sends it to all
// subscribers without blocking. Slow subscribers miss the event.
func (b *EventBus) Publish(e Event) {
	e.Seq = b.seq.Add(1)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
