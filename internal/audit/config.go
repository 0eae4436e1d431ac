package audit

import (
	"github.com/candelahq/candela/internal/engine"
	"github.com/candelahq/candela/internal/tracker"
)

// Config ties together the engine and storage settings for the
// orchestrator.
type Config struct {
	Engine  *engine.Config
	Storage *tracker.Config

	// EvidenceDir receives element screenshots captured during live-page
	// audits. Empty disables capture.
	EvidenceDir string

	// Headless controls browser visibility for live-page audits.
	Headless bool
}

// DefaultConfig returns the canonical defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine:   engine.DefaultConfig(),
		Storage:  tracker.DefaultConfig(),
		Headless: true,
	}
}
