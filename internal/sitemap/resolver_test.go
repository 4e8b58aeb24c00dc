package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

// fakeFetcher serves canned documents and records fetch order.
type fakeFetcher struct {
	mu      sync.Mutex
	docs    map[string]string
	fetched []string
}

func newFakeFetcher(docs map[string]string) *fakeFetcher {
	return &fakeFetcher{docs: docs}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, url)
	doc, ok := f.docs[url]
	if !ok {
		return "", errors.New("no such document")
	}
	return doc, nil
}

func (f *fakeFetcher) fetchCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, u := range f.fetched {
		if u == url {
			count++
		}
	}
	return count
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func urlsetDoc(urls ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n"
	for _, u := range urls {
		doc += fmt.Sprintf("  <url><loc>%s</loc></url>\n", u)
	}
	return doc + "</urlset>\n"
}

func indexDoc(sitemaps ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n"
	for _, s := range sitemaps {
		doc += fmt.Sprintf("  <sitemap><loc>%s</loc></sitemap>\n", s)
	}
	return doc + "</sitemapindex>\n"
}

// TestResolveSingleURLSet tests the simplest shape: one urlset document.
func TestResolveSingleURLSet(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": urlsetDoc(
			"https://example.com/",
			"https://example.com/about",
			"https://example.com/contact",
		),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/contact",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestResolveIndexDepthFirstOrder tests that an index of two urlsets
// yields the children's pages in document order, first child's pages
// before the second's.
func TestResolveIndexDepthFirstOrder(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": indexDoc(
			"https://example.com/posts.xml",
			"https://example.com/pages.xml",
		),
		"https://example.com/posts.xml": urlsetDoc(
			"https://example.com/post-1",
			"https://example.com/post-2",
		),
		"https://example.com/pages.xml": urlsetDoc(
			"https://example.com/page-1",
			"https://example.com/page-2",
		),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{
		"https://example.com/post-1",
		"https://example.com/post-2",
		"https://example.com/page-1",
		"https://example.com/page-2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestResolveCycleTerminates tests that sitemaps referencing each other
// terminate, with each document fetched exactly once.
func TestResolveCycleTerminates(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/a.xml": indexDoc("https://example.com/b.xml"),
		"https://example.com/b.xml": indexDoc("https://example.com/a.xml"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/a.xml")
	if len(got) != 0 {
		t.Errorf("expected no pages from a pure cycle, got %v", got)
	}
	for _, u := range []string{"https://example.com/a.xml", "https://example.com/b.xml"} {
		if n := fetcher.fetchCount(u); n != 1 {
			t.Errorf("%s fetched %d times, expected exactly once", u, n)
		}
	}
}

// TestResolveDiamondVisitsOnce tests that a sitemap reachable through two
// parents is fetched once and its pages appear once.
func TestResolveDiamondVisitsOnce(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml": indexDoc(
			"https://example.com/left.xml",
			"https://example.com/right.xml",
		),
		"https://example.com/left.xml":   indexDoc("https://example.com/shared.xml"),
		"https://example.com/right.xml":  indexDoc("https://example.com/shared.xml"),
		"https://example.com/shared.xml": urlsetDoc("https://example.com/only"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/root.xml")
	want := []string{"https://example.com/only"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
	if n := fetcher.fetchCount("https://example.com/shared.xml"); n != 1 {
		t.Errorf("shared sitemap fetched %d times, expected exactly once", n)
	}
}

// TestResolveFetchFailureAbandonsBranchOnly tests that an unreachable
// child sitemap does not stop sibling traversal.
func TestResolveFetchFailureAbandonsBranchOnly(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": indexDoc(
			"https://example.com/broken.xml",
			"https://example.com/pages.xml",
		),
		// broken.xml deliberately absent.
		"https://example.com/pages.xml": urlsetDoc("https://example.com/page-1"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{"https://example.com/page-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestResolveUnusableRootReturnsEmpty tests that a root that is neither a
// sitemap nor fetchable yields an empty, non-nil slice and no error.
func TestResolveUnusableRootReturnsEmpty(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		docs map[string]string
	}{
		{
			name: "unreachable root",
			docs: map[string]string{},
		},
		{
			name: "unrecognized document",
			docs: map[string]string{
				"https://example.com/sitemap.xml": `<?xml version="1.0"?><rss version="2.0"></rss>`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewResolver(WithFetcher(newFakeFetcher(tc.docs)), WithLogger(testLogger()))
			got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != 0 {
				t.Errorf("expected no pages, got %v", got)
			}
		})
	}
}

// TestResolveHTMLTable tests the HTML sitemap view: a table whose rows
// mix page links and child sitemap links, in document order.
func TestResolveHTMLTable(t *testing.T) {
	t.Parallel()

	htmlRoot := `<!DOCTYPE html>
<html><body>
<h1>Sitemap</h1>
<table id="sitemap">
<tr><th>URL</th></tr>
<tr><td><a href="https://example.com/first">First page</a></td></tr>
<tr><td><a href="https://example.com/child.xml">Child sitemap</a></td></tr>
<tr><td><a href="https://example.com/last">Last page</a></td></tr>
</table>
</body></html>`

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": htmlRoot,
		"https://example.com/child.xml":   urlsetDoc("https://example.com/nested"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	// The child sitemap's subtree is emitted where the child appears in
	// the parent document.
	want := []string{
		"https://example.com/first",
		"https://example.com/nested",
		"https://example.com/last",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestResolveHTMLFallsBackToFirstTable tests that without an id="sitemap"
// table the first table in the document is used, and that anchors with
// empty hrefs fall back to their text content.
func TestResolveHTMLFallsBackToFirstTable(t *testing.T) {
	t.Parallel()

	htmlRoot := `<html><body>
<table>
<tr><td><a href="">https://example.com/text-link</a></td></tr>
<tr><td><a href="https://example.com/href-link">labeled</a></td></tr>
<tr><td>no anchor here</td></tr>
</table>
<table>
<tr><td><a href="https://example.com/wrong-table">ignored</a></td></tr>
</table>
</body></html>`

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": htmlRoot,
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{
		"https://example.com/text-link",
		"https://example.com/href-link",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestResolveDuplicatePagesKeepFirst tests that a page listed by several
// sitemaps appears once, at its first position.
func TestResolveDuplicatePagesKeepFirst(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": indexDoc(
			"https://example.com/a.xml",
			"https://example.com/b.xml",
		),
		"https://example.com/a.xml": urlsetDoc(
			"https://example.com/shared",
			"https://example.com/a-only",
		),
		"https://example.com/b.xml": urlsetDoc(
			"https://example.com/b-only",
			"https://example.com/shared",
		),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{
		"https://example.com/shared",
		"https://example.com/a-only",
		"https://example.com/b-only",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestResolveCancellation tests that a cancelled context stops traversal
// and returns the pages collected so far.
func TestResolveCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": urlsetDoc("https://example.com/page"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(ctx, "https://example.com/sitemap.xml")
	if len(got) != 0 {
		t.Errorf("expected no pages after cancellation, got %v", got)
	}
	if len(fetcher.fetched) != 0 {
		t.Errorf("expected no fetches after cancellation, got %v", fetcher.fetched)
	}
}

// TestParseXMLIndexPriority tests that a malformed document containing
// both index and urlset entries is treated as an index.
func TestParseXMLIndexPriority(t *testing.T) {
	t.Parallel()

	mixed := `<?xml version="1.0"?>
<sitemapindex>
  <sitemap><loc>https://example.com/child.xml</loc></sitemap>
  <url><loc>https://example.com/stray-page</loc></url>
</sitemapindex>`

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": mixed,
		"https://example.com/child.xml":   urlsetDoc("https://example.com/real-page"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{"https://example.com/real-page"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
}

// TestParseXMLFallbackWalk tests the tolerant token walk on a document
// the structured decoder cannot represent, including the .xml filter on
// fallback index children.
func TestParseXMLFallbackWalk(t *testing.T) {
	t.Parallel()

	// Undeclared entity makes full-document unmarshal fail partway; the
	// token walk still recovers the entries before the breakage.
	broken := `<sitemapindex>
  <sitemap><loc>https://example.com/good.xml</loc></sitemap>
  <sitemap><loc>https://example.com/not-a-sitemap</loc></sitemap>
  <sitemap><loc>https://example.com/&undeclared;</loc></sitemap>
</sitemapindex>`

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemap.xml": broken,
		"https://example.com/good.xml":    urlsetDoc("https://example.com/page"),
	})
	r := NewResolver(WithFetcher(fetcher), WithLogger(testLogger()))

	got := r.Resolve(context.Background(), "https://example.com/sitemap.xml")
	want := []string{"https://example.com/page"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, expected %v", got, want)
	}
	// The non-.xml location must not be fetched as a sitemap.
	if n := fetcher.fetchCount("https://example.com/not-a-sitemap"); n != 0 {
		t.Errorf("non-sitemap location fetched %d times, expected 0", n)
	}
}

// TestIsHTMLDocument tests the content sniffing split between the HTML
// and XML paths.
func TestIsHTMLDocument(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected bool
	}{
		{"doctype", "<!DOCTYPE html><html></html>", true},
		{"doctype lowercase", "<!doctype html><html></html>", true},
		{"bare html tag", "  \n<HTML><body></body></HTML>", true},
		{"xml declaration", `<?xml version="1.0"?><urlset></urlset>`, false},
		{"bare urlset", "<urlset></urlset>", false},
		{"html tag beyond sniff window", "<x>" + string(make([]byte, 300)) + "<html>", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isHTMLDocument(tc.text); got != tc.expected {
				t.Errorf("isHTMLDocument = %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestHTTPFetcherHeaders tests that requests carry the browser-like
// headers WAF-fronted sites expect.
func TestHTTPFetcherHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, "<urlset></urlset>")
	}))
	defer server.Close()

	f := NewHTTPFetcher()
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<urlset></urlset>" {
		t.Errorf("body = %q", body)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, expected default browser string", gotUA)
	}
	if gotAccept == "" {
		t.Error("expected Accept header to be set")
	}
}

// TestHTTPFetcherStatusError tests that non-2xx responses are errors.
func TestHTTPFetcherStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewHTTPFetcher()
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected error for 403 response")
	}
}

// TestHTTPFetcherBodyLimit tests that oversized responses are truncated
// rather than read fully.
func TestHTTPFetcherBodyLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(make([]byte, 1024))
	}))
	defer server.Close()

	f := NewHTTPFetcher(WithMaxBodySize(16))
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 16 {
		t.Errorf("body length = %d, expected 16", len(body))
	}
}
