package filesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTP fetches http:// and https:// URLs.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP file source. A nil client gets a 30 second timeout.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{client: client}
}

func (h *HTTP) Request(res Resource, cb Callback) *Request {
	return Go(func(ctx context.Context) ([]byte, error) {
		if !isHTTP(res.URL) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, res.URL)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, res.URL)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, fmt.Errorf("filesource: %s returned %s", res.URL, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}, cb)
}

func isHTTP(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Router sends http(s) URLs to Remote and everything else to Local.
type Router struct {
	Local  FileSource
	Remote FileSource
}

func (r *Router) Request(res Resource, cb Callback) *Request {
	if isHTTP(res.URL) && r.Remote != nil {
		return r.Remote.Request(res, cb)
	}
	if r.Local != nil {
		return r.Local.Request(res, cb)
	}
	return Go(func(context.Context) ([]byte, error) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, res.URL)
	}, cb)
}
