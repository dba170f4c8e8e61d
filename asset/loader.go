package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Defaults for Loader.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 32 << 20

	// DefaultMaxPixels bounds decoded dimensions; 8192x8192 is 256 MiB as RGBA.
	DefaultMaxPixels = 8192 * 8192
)

// ErrEmptySource is returned for an empty source descriptor.
var ErrEmptySource = errors.New("asset: empty source")

// ErrTooLarge is returned when an asset exceeds the loader's size limit.
var ErrTooLarge = errors.New("asset: asset too large")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("asset: GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRemote reports whether source is fetched over the network.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Loader acquires decoded images from local paths and http(s) URLs.
//
// Loader is safe for concurrent use.
type Loader struct {
	root      string
	client    *http.Client
	maxBytes  int64
	maxPixels int64
	cache     *Cache
}

// NewLoader creates a Loader with the given options. Without options it
// reads files relative to the working directory, fetches with a
// DefaultTimeout client, and caches nothing.
func NewLoader(opts ...Option) *Loader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: o.timeout}
	}
	l := &Loader{
		root:      o.root,
		client:    o.client,
		maxBytes:  o.maxBytes,
		maxPixels: o.maxPixels,
	}
	if o.cacheCapacity > 0 {
		l.cache = NewCache(o.cacheCapacity)
	}
	return l
}

// Cache returns the loader's decoded-image cache, or nil when caching is
// disabled.
func (l *Loader) Cache() *Cache { return l.cache }

// Resolve returns the absolute path or URL source refers to.
func (l *Loader) Resolve(source string) string {
	if IsRemote(source) || filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(l.root, filepath.FromSlash(source))
}

// Acquire loads and decodes the image at source.
func (l *Loader) Acquire(ctx context.Context, source string) (image.Image, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	target := l.Resolve(source)
	if l.cache != nil {
		if img, ok := l.cache.Get(target); ok {
			return img, nil
		}
	}

	var (
		img image.Image
		err error
	)
	if IsRemote(target) {
		img, err = l.fetch(ctx, target)
	} else {
		img, err = l.open(target)
	}
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		l.cache.Set(target, img)
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return l.decode(resp.Body, url)
}

func (l *Loader) open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	defer f.Close()
	return l.decode(f, path)
}

// decode reads at most maxBytes from r and decodes them, refusing images
// larger than maxPixels.
func (l *Loader) decode(r io.Reader, name string) (image.Image, error) {
	if l.maxBytes > 0 {
		r = &limitedReader{r: r, n: l.maxBytes}
	}
	img, err := Decode(r, l.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("asset: %s: %w", name, err)
	}
	return img, nil
}

// limitedReader is io.LimitReader that fails instead of truncating.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.n <= 0 {
		var one [1]byte
		if n, _ := l.r.Read(one[:]); n == 0 {
			return 0, io.EOF
		}
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	return n, err
}
