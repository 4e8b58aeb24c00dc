package sitemap

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// sitemapSuffix marks a link in an HTML sitemap table (or a fallback XML
// child entry) as a reference to another sitemap document.
const sitemapSuffix = ".xml"

// sniffLen is how many leading characters are inspected to decide
// between the HTML and XML parsing paths.
const sniffLen = 200

// parseNode classifies a fetched document and extracts its items in
// document order. Each item is either a page URL or a child sitemap to
// traverse. A document matching no known shape yields zero items and a
// warning; the caller treats that as an abandoned branch.
func (r *Resolver) parseNode(url, text string) []task {
	if isHTMLDocument(text) {
		r.logger.Info("sitemap appears to be HTML, using table parser", "url", url)
		return r.parseHTMLNode(url, text)
	}
	return r.parseXMLNode(url, text)
}

// isHTMLDocument sniffs the first ~200 characters (case-insensitive) for
// an HTML doctype or tag marker.
func isHTMLDocument(text string) bool {
	head := strings.TrimLeft(text, " \t\r\n")
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = strings.ToLower(head)
	return strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html")
}

// parseHTMLNode handles the human-readable HTML sitemap view: a table
// whose rows each link either to a child sitemap (href ending in .xml)
// or to a page.
func (r *Resolver) parseHTMLNode(url, text string) []task {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		r.logger.Warn("failed to parse HTML sitemap", "url", url, "error", err)
		return nil
	}

	table := findSitemapTable(doc)
	if table == nil {
		r.logger.Warn("no table found in HTML sitemap", "url", url)
		return nil
	}

	var items []task
	for _, row := range findElements(table, "tr") {
		anchor := firstElement(row, "a")
		if anchor == nil {
			continue
		}

		loc := strings.TrimSpace(attrValue(anchor, "href"))
		if loc == "" {
			loc = strings.TrimSpace(textContent(anchor))
		}
		if loc == "" {
			continue
		}

		if strings.HasSuffix(loc, sitemapSuffix) {
			r.logger.Info("found child sitemap in HTML index", "url", loc)
			items = append(items, task{kind: taskSitemap, url: loc})
		} else {
			items = append(items, task{kind: taskPage, url: loc})
		}
	}

	return items
}

// findSitemapTable locates the table holding sitemap rows: the one with
// the conventional id "sitemap" when present, otherwise the first table
// in the document.
func findSitemapTable(doc *html.Node) *html.Node {
	var first, byID *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if byID != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			if first == nil {
				first = n
			}
			if attrValue(n, "id") == "sitemap" {
				byID = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if byID != nil {
		return byID
	}
	return first
}

// locEntry is the shared shape of <sitemap> and <url> children: only the
// location matters for traversal.
type locEntry struct {
	Loc string `xml:"loc"`
}

// sitemapIndexDoc is a structured sitemap index document.
type sitemapIndexDoc struct {
	XMLName  xml.Name   `xml:"sitemapindex"`
	Sitemaps []locEntry `xml:"sitemap"`
}

// urlSetDoc is a structured urlset document.
type urlSetDoc struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []locEntry `xml:"url"`
}

// parseXMLNode extracts items from an XML sitemap document.
//
// Structured extraction runs first: the document is unmarshaled as a
// sitemap index and, independently, as a urlset. An index with location
// entries wins unconditionally over a urlset; this matches how real
// sitemap plugins nest the two shapes and keeps behavior deterministic
// for malformed documents containing stray elements of both kinds.
// When neither structured form applies, a generic token walk over the
// element tree recovers whatever locations it can.
func (r *Resolver) parseXMLNode(url, text string) []task {
	var index sitemapIndexDoc
	indexErr := xml.Unmarshal([]byte(text), &index)
	if indexErr == nil {
		if items := childSitemaps(index.Sitemaps); len(items) > 0 {
			r.logger.Info("detected sitemap index",
				"url", url,
				"children", len(items),
			)
			return items
		}
	} else {
		r.logger.Debug("structured index extraction failed", "url", url, "error", indexErr)
	}

	var urlset urlSetDoc
	urlsetErr := xml.Unmarshal([]byte(text), &urlset)
	if urlsetErr == nil {
		if items := pageURLs(urlset.URLs); len(items) > 0 {
			r.logger.Info("detected urlset sitemap",
				"url", url,
				"pages", len(items),
			)
			return items
		}
	} else {
		r.logger.Debug("structured urlset extraction failed", "url", url, "error", urlsetErr)
	}

	r.logger.Info("structured extraction found no entries, falling back to element walk", "url", url)
	return r.walkXMLNode(url, text)
}

// childSitemaps converts index entries into traversal tasks, dropping
// blank locations.
func childSitemaps(entries []locEntry) []task {
	var items []task
	for _, e := range entries {
		loc := strings.TrimSpace(e.Loc)
		if loc == "" {
			continue
		}
		items = append(items, task{kind: taskSitemap, url: loc})
	}
	return items
}

// pageURLs converts urlset entries into page tasks, dropping blank
// locations.
func pageURLs(entries []locEntry) []task {
	var items []task
	for _, e := range entries {
		loc := strings.TrimSpace(e.Loc)
		if loc == "" {
			continue
		}
		items = append(items, task{kind: taskPage, url: loc})
	}
	return items
}

// walkXMLNode is the fallback parsing path: a tolerant token walk that
// records the root element and collects <loc> text under <sitemap> and
// <url> elements wherever they appear. The root decides the document's
// meaning; a root signifying an index recurses into its children (only
// those that look like sitemap files), a urlset root collects pages.
func (r *Resolver) walkXMLNode(url, text string) []task {
	root, sitemapLocs, urlLocs := collectLocs(text)

	switch root {
	case "sitemapindex":
		var items []task
		for _, loc := range sitemapLocs {
			if !strings.HasSuffix(loc, sitemapSuffix) {
				continue
			}
			items = append(items, task{kind: taskSitemap, url: loc})
		}
		r.logger.Info("fallback walk detected sitemap index",
			"url", url,
			"children", len(items),
		)
		return items
	case "urlset":
		var items []task
		for _, loc := range urlLocs {
			items = append(items, task{kind: taskPage, url: loc})
		}
		r.logger.Info("fallback walk detected urlset",
			"url", url,
			"pages", len(items),
		)
		return items
	default:
		r.logger.Warn("could not detect valid sitemap format", "url", url)
		return nil
	}
}

// collectLocs scans XML tokens, returning the root element's local name
// and the trimmed <loc> values found under <sitemap> and <url> elements.
// Malformed trailing input ends the scan without discarding what was
// already collected.
func collectLocs(text string) (root string, sitemapLocs, urlLocs []string) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	// Sloppy real-world sitemaps sometimes declare charsets the strict
	// decoder rejects; pass the reader through untouched.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		inSitemap int
		inURL     int
		inLoc     bool
		buf       strings.Builder
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if root == "" {
				root = name
			}
			switch name {
			case "sitemap":
				inSitemap++
			case "url":
				inURL++
			case "loc":
				if inSitemap > 0 || inURL > 0 {
					inLoc = true
					buf.Reset()
				}
			}
		case xml.CharData:
			if inLoc {
				buf.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "sitemap":
				if inSitemap > 0 {
					inSitemap--
				}
			case "url":
				if inURL > 0 {
					inURL--
				}
			case "loc":
				if inLoc {
					inLoc = false
					loc := strings.TrimSpace(buf.String())
					if loc != "" {
						// Nested <sitemap> inside <url> doesn't occur in
						// practice; sitemap wins to match index priority.
						if inSitemap > 0 {
							sitemapLocs = append(sitemapLocs, loc)
						} else if inURL > 0 {
							urlLocs = append(urlLocs, loc)
						}
					}
				}
			}
		}
	}

	return root, sitemapLocs, urlLocs
}

// findElements returns all descendant elements with the given tag name,
// in document order.
func findElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

// firstElement returns the first descendant element with the given tag
// name, or nil.
func firstElement(n *html.Node, tag string) *html.Node {
	elements := findElements(n, tag)
	if len(elements) == 0 {
		return nil
	}
	return elements[0]
}

// attrValue retrieves an attribute value from an HTML node.
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textContent concatenates all text beneath a node.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
