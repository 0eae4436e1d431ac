package interfaces

import (
	"context"

	"github.com/candelahq/candela/internal/model"
)

// ContextProvider resolves runtime element context for a selector. The
// scoring engine has zero dependency on how context is obtained; providers
// range from a live headless browser to offline snippet parsing.
//
// A provider that cannot resolve the element returns (nil, nil): "no
// context available" is an expected condition, never an error into the
// scoring path. Errors are reserved for provider-level failures worth
// logging (browser crash, navigation failure).
type ContextProvider interface {
	// GetElementContext resolves context for the given selector, or nil
	// when the element cannot be found or inspected.
	GetElementContext(ctx context.Context, selector string) (*model.ElementContext, error)

	// CaptureScreenshot stores visual evidence for the selector and returns
	// the stored path, or "" when the provider has no visual capability.
	CaptureScreenshot(ctx context.Context, selector, ruleID string) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}
