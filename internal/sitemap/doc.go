// Package sitemap resolves a site's sitemap into a flat list of page
// URLs. It handles sitemap index documents, urlset documents, and the
// HTML table view some sitemap plugins serve, following child sitemaps
// recursively with cycle protection.
package sitemap
