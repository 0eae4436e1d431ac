package model

// ElementContext captures runtime DOM/visual properties of the specific
// element a violation refers to. It is resolved by a context provider
// (live browser or offline snippet inspection) and handed to the scoring
// engine as already-resolved data; the engine itself performs no I/O.
type ElementContext struct {
	// IsInViewport is true when any part of the element intersects the
	// initial viewport.
	IsInViewport bool `json:"isInViewport"`

	// IsHidden is true when the element is removed from the visual flow
	// (display:none, visibility:hidden, or no layout box).
	IsHidden bool `json:"isHidden"`

	// IsInModal is true when a dialog/modal ancestor contains the element.
	IsInModal bool `json:"isInModal"`

	// HasComplexDescendants is true when the element contains more than
	// ComplexDescendantThreshold descendant elements.
	HasComplexDescendants bool `json:"hasComplexDescendants"`

	// TagName is the lower-cased element tag.
	TagName string `json:"tagName,omitempty"`

	// AriaAttributes holds the element's aria-* attributes, if any.
	AriaAttributes map[string]string `json:"ariaAttributes,omitempty"`
}

// ComplexDescendantThreshold is the descendant-element count above which an
// element is considered structurally complex for scoring purposes.
const ComplexDescendantThreshold = 10
