package model

import (
	"sort"

	"golang.org/x/text/unicode/norm"
)

// innerTextKeyLen is the number of characters of inner text that
// participate in aggregate identity. Long text blocks often differ only
// in trailing content (timestamps, counters); a 120-character prefix is
// enough to tell distinct components apart.
const innerTextKeyLen = 120

// AggregateKey is the composite identity under which violations from
// different pages are considered the same underlying issue.
//
// Design decision: A comparable struct key into a map, rather than a
// joined string, so that field boundaries can never collide and the key
// doubles as documentation of what identity means.
type AggregateKey struct {
	RuleID         string
	Tag            string
	ElementID      string
	ElementClasses string
	// InnerTextPrefix is the inner text truncated to innerTextKeyLen
	// runes, NFC-normalized first. Normalization makes matching slightly
	// looser than a raw byte prefix: composed and decomposed forms of the
	// same text fold into one entry instead of two. It never splits
	// records that a raw comparison would merge.
	InnerTextPrefix string
}

// KeyOf derives the aggregate key for a raw violation.
func KeyOf(v RawViolation) AggregateKey {
	return AggregateKey{
		RuleID:         v.RuleID,
		Tag:            v.Tag,
		ElementID:      v.ElementID,
		ElementClasses: v.ElementClasses,
		InnerTextPrefix: truncateRunes(
			norm.NFC.String(v.InnerText), innerTextKeyLen),
	}
}

// AggregateEntry is one deduplicated issue: a component (element identity)
// violating one rule, seen on one or more pages. Entries are a derived
// view; they are discarded and rebuilt wholesale after every scan run or
// file load, never stored incrementally.
type AggregateEntry struct {
	// RuleID is the axe-core rule identifier shared by all contributors.
	RuleID string `json:"error_id"`

	// Priority is the maximum severity among all contributing records.
	Priority Severity `json:"priority"`

	// Description is taken from the first-seen contributing record.
	Description string `json:"description"`

	// Tag, ElementID, ElementClasses and InnerText identify the component.
	Tag            string `json:"tag"`
	ElementID      string `json:"element_id"`
	ElementClasses string `json:"element_classes"`
	InnerText      string `json:"inner_text"`

	// ElementHTML is the snippet from the first-seen contributing record.
	// It is never recomputed when later records fold in.
	ElementHTML string `json:"element_html"`

	// URLs lists every page the issue was seen on, sorted ascending,
	// with no duplicates.
	URLs []string `json:"urls"`

	// URLCount always equals len(URLs). It is stored explicitly because
	// the scan-file format carries it; loaders tolerate its absence.
	URLCount int `json:"url_count"`
}

// Key returns the aggregate key this entry was folded under.
func (e AggregateEntry) Key() AggregateKey {
	return AggregateKey{
		RuleID:         e.RuleID,
		Tag:            e.Tag,
		ElementID:      e.ElementID,
		ElementClasses: e.ElementClasses,
		InnerTextPrefix: truncateRunes(
			norm.NFC.String(e.InnerText), innerTextKeyLen),
	}
}

// Aggregate reduces a list of raw violations into deduplicated entries.
//
// The function is pure and idempotent: it builds a fresh map on every
// call and mutates nothing it was given, so recomputing over the same
// input always yields identical output regardless of prior runs.
//
// Merge semantics per key: the first-seen record seeds the entry
// (description, element HTML, inner text); every record contributes its
// URL; priority is upgraded only when a record's severity rank is
// strictly greater than the entry's current rank, so ties keep the
// existing value and severity is never downgraded.
//
// Output order is deterministic regardless of input order: severity rank
// descending, then rule id ascending.
func Aggregate(raw []RawViolation) []AggregateEntry {
	entries := make(map[AggregateKey]*AggregateEntry, len(raw))
	urlSets := make(map[AggregateKey]map[string]struct{}, len(raw))

	for _, v := range raw {
		key := KeyOf(v)

		entry, ok := entries[key]
		if !ok {
			entry = &AggregateEntry{
				RuleID:         v.RuleID,
				Priority:       v.Priority,
				Description:    v.Description,
				Tag:            v.Tag,
				ElementID:      v.ElementID,
				ElementClasses: v.ElementClasses,
				InnerText:      v.InnerText,
				ElementHTML:    v.ElementHTML,
			}
			entries[key] = entry
			urlSets[key] = make(map[string]struct{})
		}

		urlSets[key][v.URL] = struct{}{}

		// Worst severity wins; ties keep the existing value.
		if v.Priority.Rank() > entry.Priority.Rank() {
			entry.Priority = v.Priority
		}
	}

	result := make([]AggregateEntry, 0, len(entries))
	for key, entry := range entries {
		urls := make([]string, 0, len(urlSets[key]))
		for u := range urlSets[key] {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		entry.URLs = urls
		entry.URLCount = len(urls)
		result = append(result, *entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		ri, rj := result[i].Priority.Rank(), result[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return result[i].RuleID < result[j].RuleID
	})

	return result
}

// truncateRunes truncates s to at most n runes.
// Byte slicing would split multi-byte characters and make two equal
// texts hash to different keys depending on encoding boundaries.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
