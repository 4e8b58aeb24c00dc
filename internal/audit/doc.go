// Package audit runs accessibility scans over a list of page URLs and
// collects the results. The Runner drives the per-URL scan loop with
// cooperative cancellation, converts scanner failures into synthetic
// violation records, and hands back an immutable result snapshot.
package audit
