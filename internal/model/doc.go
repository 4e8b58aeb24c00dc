// Package model defines the core data types of the accessibility auditor:
// violation severities, raw per-element violation records, the aggregation
// that deduplicates them across pages, and the persisted scan-file format.
//
// The package has no dependencies on other internal packages so that every
// layer (scanner, audit runner, reports, storage) can share these types
// without import cycles.
package model
