// Package aggregate reduces a scored batch into the summary statistics used
// for reporting and triage. Everything here is deterministic and
// order-independent except the documented first-seen tie break in the
// top-rules table.
package aggregate

import (
	"sort"

	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/utils"
)

// TopRulesLimit truncates the rule frequency table.
const TopRulesLimit = 10

// Summarize computes the batch summary. An empty batch yields zero counts
// and AverageConfidence 0, never NaN.
func Summarize(scored []model.ScoredViolation) model.AggregateSummary {
	bySeverity := make(map[model.Severity]int, len(model.Severities))
	for _, s := range model.Severities {
		bySeverity[s] = 0
	}

	ruleCounts := make(map[string]int)
	firstSeen := make(map[string]int)

	var totalConfidence float64
	flagged := 0

	for i, v := range scored {
		totalConfidence += v.Confidence
		if v.FlaggedForReview {
			flagged++
		}
		bySeverity[v.Severity]++
		if _, ok := ruleCounts[v.ID]; !ok {
			firstSeen[v.ID] = i
		}
		ruleCounts[v.ID]++
	}

	summary := model.AggregateSummary{
		Total:            len(scored),
		FlaggedForReview: flagged,
		BySeverity:       bySeverity,
		TopRules:         topRules(ruleCounts, firstSeen, TopRulesLimit),
	}
	if len(scored) > 0 {
		summary.AverageConfidence = utils.Round2(totalConfidence / float64(len(scored)))
		summary.FlaggedProportion = utils.Round2(float64(flagged) / float64(len(scored)))
	}
	return summary
}

// topRules sorts descending by count; ties break by first-seen order so the
// result does not depend on map iteration.
func topRules(counts map[string]int, firstSeen map[string]int, limit int) []model.RuleCount {
	rules := make([]model.RuleCount, 0, len(counts))
	for rule, count := range counts {
		rules = append(rules, model.RuleCount{Rule: rule, Count: count})
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Count != rules[j].Count {
			return rules[i].Count > rules[j].Count
		}
		return firstSeen[rules[i].Rule] < firstSeen[rules[j].Rule]
	})
	if len(rules) > limit {
		rules = rules[:limit]
	}
	return rules
}

// FilterByConfidence returns the violations with confidence >= min,
// preserving input order. Named here rather than inlined at call sites
// because both the API and the CLI reuse it.
func FilterByConfidence(scored []model.ScoredViolation, min float64) []model.ScoredViolation {
	out := make([]model.ScoredViolation, 0, len(scored))
	for _, v := range scored {
		if v.Confidence >= min {
			out = append(out, v)
		}
	}
	return out
}

// FilterFlagged returns only the violations needing manual review,
// preserving input order.
func FilterFlagged(scored []model.ScoredViolation) []model.ScoredViolation {
	out := make([]model.ScoredViolation, 0, len(scored))
	for _, v := range scored {
		if v.FlaggedForReview {
			out = append(out, v)
		}
	}
	return out
}

// SortByConfidence returns a new slice sorted descending by confidence.
// The sort is stable so equal-confidence items keep their input order.
func SortByConfidence(scored []model.ScoredViolation) []model.ScoredViolation {
	out := make([]model.ScoredViolation, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
