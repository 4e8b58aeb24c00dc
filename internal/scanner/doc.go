// Package scanner audits individual pages for accessibility violations.
// The AxeScanner drives a headless Chrome instance through chromedp,
// injects the axe-core engine, and converts its findings into raw
// violation records.
package scanner
