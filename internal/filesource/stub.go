package filesource

import (
	"context"
	"fmt"
	"sync"
)

// Responder produces the response for a stubbed request.
type Responder func(Resource) Response

// Stub is a programmable FileSource for tests. Requests of a kind without a
// responder fail with ErrNotFound.
type Stub struct {
	mu         sync.Mutex
	responders map[Kind]Responder
	requests   []Resource
}

func NewStub() *Stub {
	return &Stub{responders: make(map[Kind]Responder)}
}

// Handle installs the responder for kind.
func (s *Stub) Handle(kind Kind, r Responder) {
	s.mu.Lock()
	s.responders[kind] = r
	s.mu.Unlock()
}

// Serve makes every request of kind for url succeed with data.
func (s *Stub) Serve(kind Kind, url string, data []byte) {
	s.mu.Lock()
	prev := s.responders[kind]
	s.mu.Unlock()
	s.Handle(kind, func(res Resource) Response {
		if res.URL == url {
			return Response{Data: data}
		}
		if prev != nil {
			return prev(res)
		}
		return Response{Err: fmt.Errorf("%w: %s", ErrNotFound, res.URL)}
	})
}

// Requests returns every resource requested so far.
func (s *Stub) Requests() []Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Resource(nil), s.requests...)
}

func (s *Stub) Request(res Resource, cb Callback) *Request {
	s.mu.Lock()
	s.requests = append(s.requests, res)
	r := s.responders[res.Kind]
	s.mu.Unlock()
	return Go(func(context.Context) ([]byte, error) {
		if r == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, res.URL)
		}
		resp := r(res)
		return resp.Data, resp.Err
	}, cb)
}
