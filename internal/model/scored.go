package model

// Severity is the human-facing severity band derived from confidence and
// impact together. It is deliberately NOT a rename of Impact: a low
// confidence downgrades even critical-impact findings toward FalsePositive.
type Severity string

const (
	SeverityCritical      Severity = "critical"
	SeverityHigh          Severity = "high"
	SeverityMedium        Severity = "medium"
	SeverityLow           Severity = "low"
	SeverityFalsePositive Severity = "false_positive"
)

// Severities lists all bands in descending order of urgency. Used by the
// aggregator to emit stable per-band counts.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityFalsePositive,
}

// Factors preserves the sub-scores that fed into a confidence value, for
// auditability. Each is on the [0,1] scale. They are recorded at scoring
// time and never recomputed from the combined confidence.
type Factors struct {
	// SeverityWeight is the impact-table lookup.
	SeverityWeight float64 `json:"severityWeight"`

	// DetectionReliability reflects the curated reliable/flaky rule lists
	// (or, when element context was available, the contextual adjustment
	// score that replaces it).
	DetectionReliability float64 `json:"detectionReliability"`

	// ContextClarity measures how much usable evidence the scanner
	// attached to the violation (nodes, selectors, markup, summaries).
	ContextClarity float64 `json:"contextClarity"`

	// FalsePositiveRisk estimates the chance the finding is a scanner
	// artifact. Higher risk lowers confidence.
	FalsePositiveRisk float64 `json:"falsePositiveRisk"`

	// ContextApplied records whether DetectionReliability was replaced by
	// the contextual adjustment pass.
	ContextApplied bool `json:"contextApplied"`
}

// Evidence is the optional visual/contextual proof captured for a scored
// violation. Populated only when a live-page context provider ran.
type Evidence struct {
	ScreenshotPath string          `json:"screenshotPath,omitempty"`
	Context        *ElementContext `json:"context,omitempty"`
}

// ScoredViolation wraps a RawViolation with the engine's calibrated trust
// estimate. It is a terminal artifact: created once per (violation, context)
// pair, then displayed, stored or aggregated, never re-scored in place.
// Re-scoring with fresh context produces a new ScoredViolation.
type ScoredViolation struct {
	RawViolation

	// Confidence is the calibrated trust estimate on [0,1], rounded to two
	// decimal places.
	Confidence float64 `json:"confidence"`

	// Severity is derived from Confidence and Impact (see Severity doc).
	Severity Severity `json:"severity"`

	// FlaggedForReview marks the violation as requiring human review
	// rather than being auto-trusted.
	FlaggedForReview bool `json:"flaggedForReview"`

	// Factors is the fixed-shape record of contributing sub-scores.
	Factors Factors `json:"factors"`

	// Reasoning is the ordered audit trail: one human-readable entry per
	// rule or adjustment that fired, in application order.
	Reasoning []string `json:"reasoning"`

	// Evidence holds the optional screenshot plus element context.
	Evidence *Evidence `json:"evidence,omitempty"`
}
