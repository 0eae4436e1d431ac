package engine

import (
	"fmt"

	"github.com/candelahq/candela/internal/model"
	"github.com/candelahq/candela/internal/utils"
)

// Contextual adjustment constants. The pass starts from an in-context
// baseline and applies signed adjustments from the element's runtime
// properties, clamped to [contextMin, 1.0].
const (
	contextBaseline       = 0.70
	contextMin            = 0.20
	adjHidden             = -0.40
	adjContrastInModal    = -0.20
	adjComplexDescendants = -0.15
	adjViewportSimple     = 0.10
	adjAriaPresent        = 0.05
)

// contextualScore converts resolved element context into a trust score.
// When context is available this score REPLACES the plain detection
// reliability term rather than stacking with it: both encode how much the
// detection can be trusted for this element, and blending them would
// double-count that information.
func contextualScore(v model.RawViolation, ec *model.ElementContext, reasoning *[]string) float64 {
	adj := 0.0

	if ec.IsHidden {
		adj += adjHidden
		*reasoning = append(*reasoning, fmt.Sprintf("element hidden → %.2f", adjHidden))
	}

	// Rule-specific exception: contrast findings inside transient modal
	// layers are heavily over-reported.
	if v.ID == "color-contrast" && ec.IsInModal {
		adj += adjContrastInModal
		*reasoning = append(*reasoning, fmt.Sprintf("color-contrast inside modal → %.2f", adjContrastInModal))
	}

	if ec.HasComplexDescendants {
		adj += adjComplexDescendants
		*reasoning = append(*reasoning, fmt.Sprintf("complex descendants → %.2f", adjComplexDescendants))
	}

	if ec.IsInViewport && !ec.HasComplexDescendants {
		adj += adjViewportSimple
		*reasoning = append(*reasoning, fmt.Sprintf("in viewport with simple structure → +%.2f", adjViewportSimple))
	}

	if len(ec.AriaAttributes) > 0 {
		adj += adjAriaPresent
		*reasoning = append(*reasoning, fmt.Sprintf("ARIA attributes present → +%.2f", adjAriaPresent))
	}

	score := utils.Clamp(contextBaseline+adj, contextMin, 1.0)
	*reasoning = append(*reasoning, fmt.Sprintf("context adjustment replaces detection reliability → %.2f", score))
	return score
}
