package sitemap

import (
	"context"
	"log/slog"
)

// Resolver turns a root sitemap reference into a flat, ordered list of
// page URLs. It understands sitemap index documents, urlset documents,
// and the human-readable HTML table view some plugins serve, and follows
// child sitemaps recursively.
//
// Design decision: The traversal uses an explicit worklist stack instead
// of recursion. Sitemap graphs in the wild can be deep (year/month
// shards) or self-referential, and a worklist keeps termination and
// ordering obvious while avoiding stack growth.
type Resolver struct {
	// fetch retrieves sitemap documents. Failures are soft: the branch
	// is abandoned, siblings continue.
	fetch Fetcher

	// logger records traversal progress and soft failures.
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetcher sets the document fetcher. Defaults to an HTTPFetcher with
// browser-like headers and a 10-second timeout.
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) {
		r.fetch = f
	}
}

// WithLogger sets the logger used for traversal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}

	for _, opt := range opts {
		opt(r)
	}

	if r.fetch == nil {
		r.fetch = NewHTTPFetcher()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// taskKind distinguishes worklist entries.
type taskKind int

const (
	// taskSitemap fetches and parses a sitemap document.
	taskSitemap taskKind = iota

	// taskPage emits a page URL into the result list.
	taskPage
)

// task is one unit of traversal work.
type task struct {
	kind taskKind
	url  string
}

// Resolve traverses the sitemap graph rooted at rootURL and returns every
// discovered page URL in first-seen, depth-first document order, with
// duplicates removed.
//
// Resolve never returns an error: fetch and parse failures abandon only
// the affected branch, and a completely unusable root yields an empty
// slice. Each sitemap URL is fetched at most once per call, so cyclic or
// diamond-shaped references terminate.
//
// Cancellation via ctx stops the traversal at the next node boundary and
// returns the pages collected so far.
func (r *Resolver) Resolve(ctx context.Context, rootURL string) []string {
	visited := make(map[string]struct{})
	pageSeen := make(map[string]struct{})
	pages := make([]string, 0)

	stack := []task{{kind: taskSitemap, url: rootURL}}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			r.logger.Warn("sitemap resolution cancelled",
				"root", rootURL,
				"reason", ctx.Err(),
			)
			return pages
		default:
		}

		// Pop the top of the stack (depth-first).
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.kind == taskPage {
			if _, ok := pageSeen[t.url]; ok {
				continue
			}
			pageSeen[t.url] = struct{}{}
			pages = append(pages, t.url)
			continue
		}

		if _, ok := visited[t.url]; ok {
			r.logger.Info("skipping already-visited sitemap", "url", t.url)
			continue
		}
		visited[t.url] = struct{}{}

		r.logger.Info("fetching sitemap", "url", t.url)
		text, err := r.fetch.Fetch(ctx, t.url)
		if err != nil {
			r.logger.Warn("sitemap fetch failed, abandoning branch",
				"url", t.url,
				"error", err,
			)
			continue
		}

		items := r.parseNode(t.url, text)

		// Push in reverse so the first item in document order is
		// processed next. This reproduces recursive depth-first order:
		// a child sitemap's whole subtree is emitted before the items
		// that follow it in the parent document.
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, items[i])
		}
	}

	if len(pages) == 0 {
		r.logger.Warn("no page URLs found from sitemap", "root", rootURL)
	}

	return pages
}
