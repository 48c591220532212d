package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tendant/simple-blog/pkg/simpleblog/validation"
)

const (
	DefaultFetchTimeout  = 10 * time.Second
	DefaultCacheSize     = 64
	DefaultMaxCoverBytes = 10 << 20
)

// HTTPFetcher downloads remote cover images and keeps recently used ones in
// an LRU cache. It implements simpleblog.CoverFetcher.
type HTTPFetcher struct {
	client    *http.Client
	cache     *lru.Cache[string, []byte]
	maxBytes  int64
	cacheSize int
}

// FetcherOption configures an HTTPFetcher
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the HTTP client. Its Timeout bounds each fetch.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-fetch timeout of the default client.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithCacheSize sets how many covers are kept in memory.
func WithCacheSize(size int) FetcherOption {
	return func(f *HTTPFetcher) {
		f.cacheSize = size
	}
}

// WithMaxBytes bounds the size of a fetched image.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewHTTPFetcher creates a cover fetcher
func NewHTTPFetcher(opts ...FetcherOption) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		maxBytes:  DefaultMaxCoverBytes,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(f)
	}

	cache, err := lru.New[string, []byte](f.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cover cache: %w", err)
	}
	f.cache = cache
	return f, nil
}

// FetchCover returns the image at coverURL.
func (f *HTTPFetcher) FetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	if data, ok := f.cache.Get(coverURL); ok {
		return data, nil
	}
	if !validation.IsURL(coverURL) {
		return nil, fmt.Errorf("cover url %q is not an http(s) url", coverURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch cover: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("cover exceeds %d bytes", f.maxBytes)
	}

	f.cache.Add(coverURL, data)
	return data, nil
}
