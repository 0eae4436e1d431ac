// Package report renders aggregate summaries as deterministic text and
// compares renderings across audits.
package report

import (
	"fmt"
	"strings"

	"github.com/candelahq/candela/internal/model"
)

// RenderSummary produces a stable, line-oriented rendering of a summary.
// Field order and formatting are fixed so two renderings of equal
// summaries are byte-identical, which Compare relies on.
func RenderSummary(s model.AggregateSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "total: %d\n", s.Total)
	fmt.Fprintf(&b, "flagged for review: %d (%.2f)\n", s.FlaggedForReview, s.FlaggedProportion)
	fmt.Fprintf(&b, "average confidence: %.2f\n", s.AverageConfidence)

	b.WriteString("by severity:\n")
	for _, sev := range model.Severities {
		fmt.Fprintf(&b, "  %s: %d\n", sev, s.BySeverity[sev])
	}

	b.WriteString("top rules:\n")
	for _, rc := range s.TopRules {
		fmt.Fprintf(&b, "  %s: %d\n", rc.Rule, rc.Count)
	}

	return b.String()
}

// RenderAudit renders an audit envelope header followed by its summary.
func RenderAudit(rec model.AuditRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "audit: %s\n", rec.ID)
	if rec.URL != "" {
		fmt.Fprintf(&b, "url: %s\n", rec.URL)
	}
	b.WriteString(RenderSummary(rec.Summary))
	return b.String()
}
