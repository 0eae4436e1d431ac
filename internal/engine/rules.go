package engine

import "strings"

// Rule tables below are open-ended curations tuned against real scan
// corpora. They are package-level constants loaded once, never re-parsed
// per violation. reliableRules and flakyRules must stay disjoint; a test
// asserts the invariant.

// impactWeights maps the scanner's impact estimate to a base trust weight.
var impactWeights = map[string]float64{
	"minor":    0.60,
	"moderate": 0.75,
	"serious":  0.85,
	"critical": 0.95,
}

// defaultImpactWeight applies when impact is missing or unrecognized.
const defaultImpactWeight = 0.70

// reliableRules have a low false-positive rate in practice: the underlying
// check is structural and unambiguous.
var reliableRules = map[string]bool{
	"image-alt":                  true,
	"html-lang":                  true,
	"document-title":             true,
	"frame-title":                true,
	"form-field-multiple-labels": true,
	"duplicate-id":               true,
}

// flakyRules fire frequently on decorative or otherwise benign markup.
var flakyRules = map[string]bool{
	"color-contrast":              true,
	"aria-hidden-focus":           true,
	"heading-order":               true,
	"label-content-name-mismatch": true,
	"scrollable-region-focusable": true,
	"region":                      true,
}

// subjectiveRules always require human review regardless of confidence.
// A trailing "*" matches any rule id with that prefix.
var subjectiveRules = []string{
	"color-contrast",
	"aria-*",
	"heading-order",
	"label-content-name-mismatch",
}

// Reliability sub-scores. Exactly one applies per rule, in priority order
// reliable > flaky > wcag-tagged > neutral.
const (
	reliabilityReliable = 0.95
	reliabilityFlaky    = 0.45
	reliabilityWCAG     = 0.80
	reliabilityNeutral  = 0.70
)

// isWCAGTagged reports whether any tag references a WCAG standard.
func isWCAGTagged(tags []string) bool {
	for _, t := range tags {
		if strings.HasPrefix(strings.ToLower(t), "wcag") {
			return true
		}
	}
	return false
}

// isSubjectiveRule reports whether the rule id matches the always-flag
// list, including wildcard prefixes.
func isSubjectiveRule(id string) bool {
	for _, pattern := range subjectiveRules {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(id, prefix) {
				return true
			}
		} else if id == pattern {
			return true
		}
	}
	return false
}
