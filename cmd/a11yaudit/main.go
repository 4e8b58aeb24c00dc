// Package main provides the entry point for the a11yaudit CLI.
//
// a11yaudit scans websites for WCAG accessibility violations using the
// axe-core engine in a headless browser. It resolves sitemaps into page
// lists, aggregates violations by offending component, and exports
// results as JSON, Markdown, or Excel.
//
// Usage:
//
//	a11yaudit scan https://example.com/page
//	a11yaudit scan --sitemap https://example.com/sitemap.xml
//	a11yaudit scan --csv targets.csv
//
// See --help for all available options.
package main

// main is the entry point for a11yaudit.
func main() {
	Execute()
}
