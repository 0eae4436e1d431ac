package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/utils"
)

// Context clarity increments. The floor applies when the scanner attached
// no nodes at all: total absence of evidence is maximum uncertainty, not
// minimum confidence, so the floor sits mid-range rather than at zero.
const (
	clarityFloor         = 0.50
	clarityBase          = 0.40
	clarityIncrement     = 0.20
	fpRiskBase           = 0.10
	fpRiskPatternPenalty = 0.15
	fpRiskFlakyPenalty   = 0.25
	fpRiskSystemicBonus  = 0.05
	systemicNodeCount    = 3
)

// fpPattern is one bounded, ReDoS-safe expression associated with a common
// false-positive shape in the combined node markup and failure text.
type fpPattern struct {
	name string
	re   *regexp.Regexp
}

// falsePositivePatterns are compiled once at process start. Keep every
// expression linear: literal runs plus bounded character classes only.
var falsePositivePatterns = []fpPattern{
	{"empty-aria-label", regexp.MustCompile(`aria-label=["']\s*["']`)},
	{"display-none", regexp.MustCompile(`display:\s*none`)},
	{"visibility-hidden", regexp.MustCompile(`visibility:\s*hidden`)},
	{"presentation-role", regexp.MustCompile(`role=["']?(presentation|none)["']?`)},
	{"aria-hidden", regexp.MustCompile(`aria-hidden=["']?true["']?`)},
}

// severityWeight is the impact-table lookup. Unknown impact maps to the
// documented default and records the substitution.
func severityWeight(v model.RawViolation, reasoning *[]string) float64 {
	if w, ok := impactWeights[string(v.Impact)]; ok {
		*reasoning = append(*reasoning, fmt.Sprintf("base impact %s → %.2f", v.Impact, w))
		return w
	}
	*reasoning = append(*reasoning, fmt.Sprintf("unknown impact %q → default %.2f", string(v.Impact), defaultImpactWeight))
	return defaultImpactWeight
}

// detectionReliability scores how much the rule itself can be trusted.
// Exactly one branch applies; reliable and flaky lists are disjoint by
// construction.
func detectionReliability(v model.RawViolation, reasoning *[]string) float64 {
	switch {
	case reliableRules[v.ID]:
		*reasoning = append(*reasoning, fmt.Sprintf("reliable rule %s → %.2f", v.ID, reliabilityReliable))
		return reliabilityReliable
	case flakyRules[v.ID]:
		*reasoning = append(*reasoning, fmt.Sprintf("flaky rule %s → %.2f", v.ID, reliabilityFlaky))
		return reliabilityFlaky
	case isWCAGTagged(v.Tags):
		*reasoning = append(*reasoning, fmt.Sprintf("WCAG-tagged rule %s → %.2f", v.ID, reliabilityWCAG))
		return reliabilityWCAG
	default:
		*reasoning = append(*reasoning, fmt.Sprintf("neutral reliability for %s → %.2f", v.ID, reliabilityNeutral))
		return reliabilityNeutral
	}
}

// contextClarity measures the evidence attached to the violation. Each
// present property adds a fixed increment, so the score is monotone in the
// amount of evidence.
func contextClarity(v model.RawViolation, reasoning *[]string) float64 {
	if len(v.Nodes) == 0 {
		*reasoning = append(*reasoning, fmt.Sprintf("no context found: zero nodes → clarity floor %.2f", clarityFloor))
		return clarityFloor
	}

	score := clarityBase
	allSummaries, allTargets, allHTML := true, true, true
	for _, n := range v.Nodes {
		if strings.TrimSpace(n.FailureSummary) == "" {
			allSummaries = false
		}
		if len(n.Target) == 0 {
			allTargets = false
		}
		if strings.TrimSpace(n.HTML) == "" {
			allHTML = false
		}
	}
	if allSummaries {
		score += clarityIncrement
		*reasoning = append(*reasoning, fmt.Sprintf("failure summaries on every node → +%.2f clarity", clarityIncrement))
	}
	if allTargets {
		score += clarityIncrement
		*reasoning = append(*reasoning, fmt.Sprintf("selectors on every node → +%.2f clarity", clarityIncrement))
	}
	if allHTML {
		score += clarityIncrement
		*reasoning = append(*reasoning, fmt.Sprintf("markup on every node → +%.2f clarity", clarityIncrement))
	}
	return utils.Clamp01(score)
}

// falsePositiveRisk estimates the chance the finding is a scanner
// artifact. Pattern matches and flaky rules raise it; a systemic pattern
// across several nodes lowers it slightly. Clamped to [0,1].
func falsePositiveRisk(v model.RawViolation, reasoning *[]string) float64 {
	risk := fpRiskBase

	var combined strings.Builder
	for _, n := range v.Nodes {
		combined.WriteString(n.HTML)
		combined.WriteByte('\n')
		combined.WriteString(n.FailureSummary)
		combined.WriteByte('\n')
	}
	text := combined.String()

	for _, p := range falsePositivePatterns {
		if p.re.MatchString(text) {
			risk += fpRiskPatternPenalty
			*reasoning = append(*reasoning, fmt.Sprintf("false-positive pattern %s matched → +%.2f risk", p.name, fpRiskPatternPenalty))
		}
	}

	if flakyRules[v.ID] {
		risk += fpRiskFlakyPenalty
		*reasoning = append(*reasoning, fmt.Sprintf("flaky rule %s → +%.2f risk", v.ID, fpRiskFlakyPenalty))
	}

	if len(v.Nodes) >= systemicNodeCount {
		risk -= fpRiskSystemicBonus
		*reasoning = append(*reasoning, fmt.Sprintf("systemic pattern across %d nodes → -%.2f risk", len(v.Nodes), fpRiskSystemicBonus))
	}

	return utils.Clamp01(risk)
}
