package model

// Impact is the scanner's own coarse severity estimate for a violation.
// Values mirror the ruleset engine's vocabulary; anything else is treated
// as unknown and falls back to a documented default weight during scoring.
type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactModerate Impact = "moderate"
	ImpactSerious  Impact = "serious"
	ImpactCritical Impact = "critical"
)

// Known reports whether the impact is one of the scanner's documented values.
func (i Impact) Known() bool {
	switch i {
	case ImpactMinor, ImpactModerate, ImpactSerious, ImpactCritical:
		return true
	}
	return false
}

// ViolationNode is one affected DOM occurrence of a rule violation.
type ViolationNode struct {
	// HTML is the raw markup snippet of the offending element.
	HTML string `json:"html"`

	// Target is an ordered list of selector strings identifying the element,
	// outermost frame first. The first entry is the usual lookup selector.
	Target []string `json:"target"`

	// FailureSummary is the scanner's free-text explanation of why the
	// element failed. May be empty.
	FailureSummary string `json:"failureSummary,omitempty"`
}

// Selector returns the primary CSS selector for this node, or "" when the
// scanner supplied no target.
func (n ViolationNode) Selector() string {
	if len(n.Target) == 0 {
		return ""
	}
	return n.Target[0]
}

// RawViolation is one rule violation exactly as reported by the external
// DOM/ruleset scanner. It is immutable input: scoring never mutates it,
// it only wraps it in a ScoredViolation.
type RawViolation struct {
	// ID is the stable rule identifier (e.g. "color-contrast"), used as a
	// key into the curated rule tables.
	ID string `json:"id"`

	// Impact is the scanner's own severity estimate. May be empty or
	// unrecognized in degenerate input.
	Impact Impact `json:"impact"`

	// Tags carries standard references (e.g. "wcag2aa"). Order-irrelevant.
	Tags []string `json:"tags,omitempty"`

	// Nodes are the affected DOM occurrences. May be empty only in
	// degenerate input; a violation with zero nodes is scored against the
	// no-context default path.
	Nodes []ViolationNode `json:"nodes"`

	Description string `json:"description,omitempty"`
	Help        string `json:"help,omitempty"`
	HelpURL     string `json:"helpUrl,omitempty"`
}
