package model

// RuleCount is one row of the top-offending-rules frequency table.
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// AggregateSummary reduces a scored batch to the statistics used for
// reporting and triage prioritization. It is a plain value object with no
// lifecycle beyond the batch it summarizes.
type AggregateSummary struct {
	// Total is the number of scored violations in the batch.
	Total int `json:"total"`

	// FlaggedForReview counts violations needing human review.
	FlaggedForReview int `json:"flaggedForReview"`

	// FlaggedProportion is FlaggedForReview/Total, 0 for an empty batch.
	FlaggedProportion float64 `json:"flaggedProportion"`

	// AverageConfidence is the mean confidence rounded to two decimals.
	// 0 for an empty batch, never NaN.
	AverageConfidence float64 `json:"averageConfidence"`

	// BySeverity counts violations per severity band. Every band is
	// present, zero-valued bands included, so consumers get stable keys.
	BySeverity map[Severity]int `json:"bySeverity"`

	// TopRules is the rule-id frequency table, descending by count with
	// first-seen order breaking ties, truncated to the aggregator's top-N.
	TopRules []RuleCount `json:"topRules"`
}
