package filesource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local serves file:// and asset:// URLs, and bare paths, from a root
// directory. Paths may not escape the root.
type Local struct {
	root string
}

// NewLocal creates a file source rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

func (l *Local) Request(res Resource, cb Callback) *Request {
	return Go(func(ctx context.Context) ([]byte, error) {
		path, err := l.resolve(res.URL)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, res.URL)
		}
		return data, err
	}, cb)
}

// Root returns the directory resources are read from.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) resolve(url string) (string, error) {
	rel := url
	for _, scheme := range []string{"file://", "asset://"} {
		rel = strings.TrimPrefix(rel, scheme)
	}
	if strings.Contains(rel, "://") {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, url)
	}
	// Cleaning against "/" drops any leading "..", keeping rel under root.
	rel = filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(l.root, rel), nil
}
