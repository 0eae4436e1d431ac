package aggregate_test

import (
	"reflect"
	"testing"

	"github.com/candelahq/candela/internal/aggregate"
	"github.com/candelahq/candela/internal/model"
)

func sv(rule string, confidence float64, severity model.Severity, flagged bool) model.ScoredViolation {
	return model.ScoredViolation{
		RawViolation:     model.RawViolation{ID: rule},
		Confidence:       confidence,
		Severity:         severity,
		FlaggedForReview: flagged,
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := aggregate.Summarize(nil)

	if s.Total != 0 || s.FlaggedForReview != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if s.AverageConfidence != 0 || s.FlaggedProportion != 0 {
		t.Errorf("empty batch must yield 0 averages, got %+v", s)
	}
	if len(s.BySeverity) != len(model.Severities) {
		t.Errorf("expected all severity bands present, got %v", s.BySeverity)
	}
	for band, n := range s.BySeverity {
		if n != 0 {
			t.Errorf("band %s should be 0, got %d", band, n)
		}
	}
	if len(s.TopRules) != 0 {
		t.Errorf("expected no top rules, got %v", s.TopRules)
	}
}

func TestSummarize_Counts(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredViolation{
		sv("image-alt", 0.96, model.SeverityCritical, false),
		sv("color-contrast", 0.52, model.SeverityFalsePositive, true),
		sv("color-contrast", 0.55, model.SeverityFalsePositive, true),
		sv("region", 0.70, model.SeverityLow, true),
	}

	s := aggregate.Summarize(scored)

	if s.Total != 4 {
		t.Errorf("expected total 4, got %d", s.Total)
	}
	if s.FlaggedForReview != 3 {
		t.Errorf("expected 3 flagged, got %d", s.FlaggedForReview)
	}
	if s.FlaggedProportion != 0.75 {
		t.Errorf("expected proportion 0.75, got %v", s.FlaggedProportion)
	}
	// (0.96+0.52+0.55+0.70)/4 = 0.6825 → 0.68
	if s.AverageConfidence != 0.68 {
		t.Errorf("expected average 0.68, got %v", s.AverageConfidence)
	}
	if s.BySeverity[model.SeverityCritical] != 1 || s.BySeverity[model.SeverityFalsePositive] != 2 || s.BySeverity[model.SeverityLow] != 1 {
		t.Errorf("unexpected severity counts: %v", s.BySeverity)
	}
	if s.BySeverity[model.SeverityHigh] != 0 {
		t.Errorf("untouched bands must still be present and zero, got %v", s.BySeverity)
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredViolation{
		sv("image-alt", 0.96, model.SeverityCritical, false),
		sv("color-contrast", 0.52, model.SeverityFalsePositive, true),
		sv("region", 0.70, model.SeverityLow, true),
	}
	reversed := []model.ScoredViolation{scored[2], scored[1], scored[0]}

	a := aggregate.Summarize(scored)
	b := aggregate.Summarize(reversed)

	// Everything except the documented top-rules tie-break is independent
	// of input order; with distinct rules even that is identical here in
	// content, only first-seen position differs.
	if a.Total != b.Total || a.FlaggedForReview != b.FlaggedForReview ||
		a.AverageConfidence != b.AverageConfidence || a.FlaggedProportion != b.FlaggedProportion {
		t.Errorf("summaries differ by input order:\n%+v\n%+v", a, b)
	}
	if !reflect.DeepEqual(a.BySeverity, b.BySeverity) {
		t.Errorf("severity counts differ by input order: %v vs %v", a.BySeverity, b.BySeverity)
	}
}

func TestSummarize_TopRulesOrderAndTieBreak(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredViolation{
		sv("b-rule", 0.5, model.SeverityLow, false),
		sv("a-rule", 0.5, model.SeverityLow, false),
		sv("c-rule", 0.5, model.SeverityLow, false),
		sv("c-rule", 0.5, model.SeverityLow, false),
		sv("a-rule", 0.5, model.SeverityLow, false),
	}

	s := aggregate.Summarize(scored)

	// c-rule and a-rule both count 2; a-rule was seen first.
	want := []model.RuleCount{
		{Rule: "a-rule", Count: 2},
		{Rule: "c-rule", Count: 2},
		{Rule: "b-rule", Count: 1},
	}
	if !reflect.DeepEqual(s.TopRules, want) {
		t.Errorf("top rules mismatch:\n got %v\nwant %v", s.TopRules, want)
	}
}

func TestSummarize_TopRulesTruncated(t *testing.T) {
	t.Parallel()

	var scored []model.ScoredViolation
	rules := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11"}
	for _, r := range rules {
		scored = append(scored, sv(r, 0.5, model.SeverityLow, false))
	}

	s := aggregate.Summarize(scored)

	if len(s.TopRules) != aggregate.TopRulesLimit {
		t.Errorf("expected %d top rules, got %d", aggregate.TopRulesLimit, len(s.TopRules))
	}
}

func TestFilterByConfidence(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredViolation{
		sv("a", 0.90, model.SeverityHigh, false),
		sv("b", 0.50, model.SeverityMedium, true),
		sv("c", 0.70, model.SeverityLow, true),
	}

	out := aggregate.FilterByConfidence(scored, 0.70)

	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("unexpected filter result: %v", out)
	}
}

func TestFilterFlagged(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredViolation{
		sv("a", 0.90, model.SeverityHigh, false),
		sv("b", 0.50, model.SeverityMedium, true),
	}

	out := aggregate.FilterFlagged(scored)

	if len(out) != 1 || out[0].ID != "b" {
		t.Errorf("unexpected filter result: %v", out)
	}
}

func TestSortByConfidence_StableAndNonMutating(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredViolation{
		sv("a", 0.50, model.SeverityMedium, false),
		sv("b", 0.90, model.SeverityHigh, false),
		sv("c", 0.50, model.SeverityMedium, false),
	}

	out := aggregate.SortByConfidence(scored)

	if out[0].ID != "b" || out[1].ID != "a" || out[2].ID != "c" {
		t.Errorf("unexpected sort order: %v, %v, %v", out[0].ID, out[1].ID, out[2].ID)
	}
	if scored[0].ID != "a" {
		t.Error("input slice must not be mutated")
	}
}
