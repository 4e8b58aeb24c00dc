package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no scan target is specified.
	// A scan needs positional URLs, a sitemap URL, or a CSV file.
	ErrNoTarget = errors.New("no target specified: provide page URLs, --sitemap, or --csv")

	// ErrConflictingTargets is returned when more than one target source
	// is given. Mixing sources would make the scan order ambiguous.
	ErrConflictingTargets = errors.New("conflicting targets: use only one of page URLs, --sitemap, or --csv")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A timeout of zero or negative would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPageTimeout is returned when the per-page audit timeout
	// is not positive.
	ErrInvalidPageTimeout = errors.New("invalid page timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoWCAGTags is returned when the WCAG tag list is emptied out.
	// axe needs at least one rule tag to select an audit rule set.
	ErrNoWCAGTags = errors.New("no WCAG tags: at least one rule tag is required")
)
