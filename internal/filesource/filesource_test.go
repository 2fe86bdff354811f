package filesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "styles"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles", "basic.json"), []byte(`{"name":"basic"}`), 0644))

	fs := NewLocal(dir)
	ctx := context.Background()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{"asset scheme", "asset://styles/basic.json", `{"name":"basic"}`, nil},
		{"file scheme", "file:///styles/basic.json", `{"name":"basic"}`, nil},
		{"bare path", "styles/basic.json", `{"name":"basic"}`, nil},
		{"traversal stays in root", "asset://../../styles/basic.json", `{"name":"basic"}`, nil},
		{"missing", "asset://styles/none.json", "", ErrNotFound},
		{"remote", "https://example.com/style.json", "", ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Fetch(ctx, fs, Resource{Kind: KindStyle, URL: tt.url})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/style.json":
			w.Write([]byte(`{"name":"remote"}`))
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fs := NewHTTP(srv.Client())
	ctx := context.Background()

	data, err := Fetch(ctx, fs, Resource{Kind: KindStyle, URL: srv.URL + "/style.json"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"remote"}`, string(data))

	_, err = Fetch(ctx, fs, Resource{Kind: KindStyle, URL: srv.URL + "/missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Fetch(ctx, fs, Resource{Kind: KindStyle, URL: srv.URL + "/boom"})
	assert.Error(t, err)

	_, err = Fetch(ctx, fs, Resource{Kind: KindStyle, URL: "asset://style.json"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRouter(t *testing.T) {
	local, remote := NewStub(), NewStub()
	local.Serve(KindStyle, "asset://a.json", []byte("local"))
	remote.Serve(KindStyle, "https://x/a.json", []byte("remote"))
	r := &Router{Local: local, Remote: remote}
	ctx := context.Background()

	data, err := Fetch(ctx, r, Resource{Kind: KindStyle, URL: "asset://a.json"})
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	data, err = Fetch(ctx, r, Resource{Kind: KindStyle, URL: "https://x/a.json"})
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))

	_, err = Fetch(ctx, &Router{}, Resource{URL: "asset://a.json"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCache(t *testing.T) {
	stub := NewStub()
	stub.Serve(KindStyle, "asset://style.json", []byte("style"))
	stub.Serve(KindTile, "asset://0/0/0.pbf", []byte("tile"))

	c, err := NewCache(stub, CacheConfig{MaxBytes: 1 << 20})
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := Fetch(ctx, c, Resource{Kind: KindStyle, URL: "asset://style.json"})
		require.NoError(t, err)
		assert.Equal(t, "style", string(data))
	}
	for i := 0; i < 2; i++ {
		_, err := Fetch(ctx, c, Resource{Kind: KindTile, URL: "asset://0/0/0.pbf"})
		require.NoError(t, err)
	}
	_, err = Fetch(ctx, c, Resource{Kind: KindStyle, URL: "asset://missing.json"})
	assert.ErrorIs(t, err, ErrNotFound)

	var styles, tiles int
	for _, res := range stub.Requests() {
		switch res.Kind {
		case KindStyle:
			styles++
		case KindTile:
			tiles++
		}
	}
	assert.Equal(t, 2, styles, "style fetched once plus one miss")
	assert.Equal(t, 2, tiles, "tiles bypass the cache")
}

func TestRequestCancel(t *testing.T) {
	release := make(chan struct{})
	called := make(chan struct{}, 1)

	req := Go(func(ctx context.Context) ([]byte, error) {
		<-release
		return []byte("late"), nil
	}, func(Response) { called <- struct{}{} })

	req.Cancel()
	close(release)

	select {
	case <-called:
		t.Fatal("callback ran after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFetchContextCancel(t *testing.T) {
	stub := NewStub()
	block := make(chan struct{})
	defer close(block)
	stub.Handle(KindStyle, func(Resource) Response {
		<-block
		return Response{Data: []byte("never")}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Fetch(ctx, stub, Resource{Kind: KindStyle, URL: "asset://slow.json"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
