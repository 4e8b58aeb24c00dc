package model

import "strings"

// Severity represents the priority level of an accessibility violation.
// The levels mirror the impact values reported by axe-core, plus an
// Unknown level for records whose impact is missing or unrecognized.
//
// Design decision: We use iota-based constants rather than raw impact
// strings because severity is compared and sorted constantly during
// aggregation. The constants are declared in ascending order so that
// direct comparison (a > b) agrees with Rank().
type Severity int

const (
	// SeverityUnknown is used when the scanner reported no impact or an
	// impact string we don't recognize. It always loses severity conflicts.
	SeverityUnknown Severity = iota

	// SeverityMinor indicates cosmetic issues with little user impact.
	SeverityMinor

	// SeverityModerate indicates issues that degrade the experience for
	// some assistive-technology users.
	SeverityModerate

	// SeveritySerious indicates issues that block content or functionality
	// for some assistive-technology users.
	SeveritySerious

	// SeverityCritical indicates issues that make content unusable with
	// assistive technology. Scan failures are also reported at this level.
	SeverityCritical
)

// Rank returns the numeric severity rank used for conflict resolution:
// critical=3, serious=2, moderate=1, minor=0, unknown=-1.
// Higher rank wins when merging violations with the same aggregate key.
func (s Severity) Rank() int {
	return int(s) - 1
}

// String returns the impact string as reported by axe-core.
// SeverityUnknown renders as the empty string so that serialized records
// round-trip records that never carried an impact.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeveritySerious:
		return "serious"
	case SeverityCritical:
		return "critical"
	default:
		return ""
	}
}

// ParseSeverity converts an axe-core impact string into a Severity.
// Unrecognized or empty values map to SeverityUnknown rather than an error
// because loosely-shaped scanner output must never abort a run.
func ParseSeverity(impact string) Severity {
	switch strings.ToLower(strings.TrimSpace(impact)) {
	case "minor":
		return SeverityMinor
	case "moderate":
		return SeverityModerate
	case "serious":
		return SeveritySerious
	case "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// MarshalText implements encoding.TextMarshaler so Severity serializes as
// its impact string in JSON scan files.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Unknown impact strings are accepted and mapped to SeverityUnknown.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}
