// Package filesource resolves resource URLs to bytes without blocking the
// caller. Results are delivered to a callback on a worker goroutine.
package filesource

import (
	"context"
	"errors"
	"sync"
)

// Kind tells a file source what a resource is used for.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindStyle
	KindSource
	KindTile
	KindGlyphs
	KindSpriteImage
	KindSpriteJSON
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "style"
	case KindSource:
		return "source"
	case KindTile:
		return "tile"
	case KindGlyphs:
		return "glyphs"
	case KindSpriteImage:
		return "sprite-image"
	case KindSpriteJSON:
		return "sprite-json"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Resource identifies what to fetch.
type Resource struct {
	Kind Kind
	URL  string
}

// Response is the outcome of a request. Err is non-nil on failure.
type Response struct {
	Data []byte
	Err  error
}

// Callback receives the response of a request.
type Callback func(Response)

// FileSource is the capability to resolve resources asynchronously.
// Request must return immediately; cb is invoked at most once, on another
// goroutine, and never after the returned request has been cancelled.
type FileSource interface {
	Request(res Resource, cb Callback) *Request
}

var (
	ErrNotFound    = errors.New("filesource: resource not found")
	ErrUnsupported = errors.New("filesource: unsupported url")
)

// Request is a handle on an in-flight request.
type Request struct {
	cancel context.CancelFunc

	mu   sync.Mutex
	done bool
}

// Cancel stops the request. The callback will not run after Cancel returns.
// Cancel must not be called from inside the request's own callback.
func (r *Request) Cancel() {
	r.cancel()
	r.mu.Lock()
	r.done = true
	r.mu.Unlock()
}

// Go runs fetch on a new goroutine and delivers its result to cb unless the
// request is cancelled first. It is the building block for implementations.
func Go(fetch func(ctx context.Context) ([]byte, error), cb Callback) *Request {
	ctx, cancel := context.WithCancel(context.Background())
	req := &Request{cancel: cancel}
	go func() {
		data, err := fetch(ctx)
		req.mu.Lock()
		defer req.mu.Unlock()
		if req.done {
			return
		}
		req.done = true
		cancel()
		cb(Response{Data: data, Err: err})
	}()
	return req
}

// Fetch issues a request and waits for it. It is for callers that are not
// the owner of a style document, such as request handlers.
func Fetch(ctx context.Context, fs FileSource, res Resource) ([]byte, error) {
	ch := make(chan Response, 1)
	req := fs.Request(res, func(r Response) { ch <- r })
	select {
	case r := <-ch:
		return r.Data, r.Err
	case <-ctx.Done():
		req.Cancel()
		return nil, ctx.Err()
	}
}
