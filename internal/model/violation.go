package model

// ScanErrorRuleID is the reserved rule id for synthetic records created
// when the scanner itself fails for a URL. Exactly one such record is
// appended per failed page so a single failure never aborts the run.
const ScanErrorRuleID = "SCAN_ERROR"

// RawViolation is a single accessibility violation reported for one
// offending element on one page. Records are immutable once created:
// they are appended during a run and only replaced wholesale by a session
// reset or a load from file.
//
// Design decision: We use a defined struct with an explicit Severity enum
// rather than a loosely-typed map because aggregation depends on exact
// field identity; ambiguous missing-key handling has no place here.
type RawViolation struct {
	// URL is the page the violation was found on.
	URL string `json:"url"`

	// RuleID is the axe-core rule identifier (e.g. "color-contrast"),
	// or ScanErrorRuleID for synthetic scan-failure records.
	RuleID string `json:"rule_id"`

	// Priority is the violation severity as reported by the scanner.
	Priority Severity `json:"priority"`

	// Description is the human-readable rule description.
	Description string `json:"description"`

	// ElementHTML is the outerHTML snippet of the offending element.
	ElementHTML string `json:"element_html"`

	// ElementID is the id attribute of the offending element, if any.
	ElementID string `json:"element_id"`

	// ElementClasses is the space-joined class list of the element.
	ElementClasses string `json:"element_classes"`

	// Tag is the element's tag name (e.g. "img", "button").
	Tag string `json:"tag"`

	// InnerText is the element's visible text, whitespace-collapsed.
	InnerText string `json:"inner_text"`
}

// NewScanFailure builds the synthetic critical-severity record that
// stands in for a page whose scan failed entirely. The failure message
// is carried in the description so it surfaces in every view and export.
func NewScanFailure(url string, err error) RawViolation {
	msg := "SCAN ERROR"
	if err != nil {
		msg = "SCAN ERROR: " + err.Error()
	}
	return RawViolation{
		URL:         url,
		RuleID:      ScanErrorRuleID,
		Priority:    SeverityCritical,
		Description: msg,
	}
}

// IsScanFailure reports whether this record is a synthetic scan-failure
// marker rather than a real accessibility finding.
func (v RawViolation) IsScanFailure() bool {
	return v.RuleID == ScanErrorRuleID
}
