package model

import (
	"sort"
	"time"
)

// ScanDateFormat is the timestamp layout used in scan-file metadata.
const ScanDateFormat = "2006-01-02 15:04"

// ScanMetadata describes when a scan ran and which pages it covered.
type ScanMetadata struct {
	// ScanDate is the run timestamp formatted with ScanDateFormat.
	ScanDate string `json:"scan_date"`

	// URLs is the sorted union of every URL that appears in the results,
	// whether as an aggregate contributor or a raw record.
	URLs []string `json:"urls"`
}

// ScanFile is the persisted form of a scan session: metadata plus both
// the aggregated view and the raw per-element records. The aggregate
// view is stored for convenience but remains derivable from the raw
// records at any time.
type ScanFile struct {
	Metadata   ScanMetadata     `json:"metadata"`
	Results    []AggregateEntry `json:"results"`
	RawResults []RawViolation   `json:"raw_results"`
}

// NewScanFile assembles a ScanFile from a completed run.
// The metadata URL list is the deduplicated, sorted union of all URLs
// referenced by entries and raw records.
func NewScanFile(scannedAt time.Time, entries []AggregateEntry, raw []RawViolation) *ScanFile {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, u := range e.URLs {
			seen[u] = struct{}{}
		}
	}
	for _, v := range raw {
		if v.URL != "" {
			seen[v.URL] = struct{}{}
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	return &ScanFile{
		Metadata: ScanMetadata{
			ScanDate: scannedAt.Format(ScanDateFormat),
			URLs:     urls,
		},
		Results:    entries,
		RawResults: raw,
	}
}

// Normalize repairs derived fields after loading from disk.
// Older files may lack url_count on entries; it is recomputed from the
// URL list rather than trusted blindly.
func (f *ScanFile) Normalize() {
	for i := range f.Results {
		f.Results[i].URLCount = len(f.Results[i].URLs)
	}
}

// SeverityCounts tallies aggregate entries per severity level.
// Used by the history store and the markdown summary.
func (f *ScanFile) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int)
	for _, e := range f.Results {
		counts[e.Priority]++
	}
	return counts
}
