package pagecontext

import (
	"time"

	"github.com/candelahq/candela/internal/model"
)

// Backend names the context-provider implementation to construct.
type Backend string

const (
	// BackendChromedp inspects the live page in a headless browser.
	BackendChromedp Backend = "chromedp"

	// BackendSnippet derives a best-effort context from the violation's
	// own markup snippet, with no browser involved.
	BackendSnippet Backend = "snippet"
)

// Config is the minimal input for constructing a ContextProvider.
type Config struct {
	Backend Backend

	// TargetURL is the page to inspect. Required by the chromedp backend.
	TargetURL string

	// EvidenceDir receives element screenshots. Empty disables capture.
	EvidenceDir string

	// SettleTimeout bounds the post-navigation network-idle wait.
	SettleTimeout time.Duration

	// Headless controls browser visibility for the chromedp backend.
	Headless bool

	// Violations seed the snippet backend's selector index.
	Violations []model.RawViolation
}

// DefaultConfig returns a headless chromedp configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:       BackendChromedp,
		SettleTimeout: 10 * time.Second,
		Headless:      true,
	}
}
