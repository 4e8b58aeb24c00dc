package sitemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default fetch settings.
// Sitemap endpoints frequently sit behind WAFs that reject obvious bot
// traffic, so the defaults imitate a desktop browser request.
const (
	// DefaultTimeout bounds a single sitemap fetch. Sitemaps are small
	// documents; anything slower than this is effectively unreachable.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is a desktop Chrome User-Agent string.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// DefaultMaxBodySize limits how much of a sitemap document is read.
	// 5MB covers even the 50,000-entry maximum the sitemap protocol allows.
	DefaultMaxBodySize = 5 * 1024 * 1024

	acceptHeader         = "text/xml,application/xml,application/xhtml+xml,text/html;q=0.9"
	acceptLanguageHeader = "en-US,en;q=0.8"
)

// Fetcher retrieves the text of a sitemap document.
// The resolver treats any returned error as a soft failure: the branch is
// abandoned and traversal continues with its siblings.
type Fetcher interface {
	// Fetch returns the document body for the given URL.
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches sitemap documents over HTTP with browser-like
// headers.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithTimeout sets the per-request timeout.
// Ignored when a custom client is supplied via WithHTTPClient.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if f.client != nil {
			f.client.Timeout = d
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with browser-like defaults.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs an HTTP GET and returns the body text.
// A non-2xx status is an error: the caller cannot distinguish a 403 block
// page from a sitemap, so both are treated as an unreachable node.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build sitemap request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sitemap %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch sitemap %s: unexpected status %d %s",
			url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read sitemap %s: %w", url, err)
	}

	return string(body), nil
}
